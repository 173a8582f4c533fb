package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/envmap-cli/internal/config"
)

func TestNewRouter_AppliesFetchRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	tests := []struct {
		name       string
		rateLimit  float64
		secondFail bool
	}{
		{name: "unlimited", rateLimit: 0, secondFail: false},
		{name: "limited", rateLimit: 0.001, secondFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = &config.Config{Fetch: config.FetchConfig{TimeoutSecs: 5, RateLimit: tt.rateLimit}}
			f, err := newRouter().For(srv.URL + "/stops.csv")
			require.NoError(t, err)

			_, err = f.Fetch(context.Background(), srv.URL+"/stops.csv", &bytes.Buffer{})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = f.Fetch(ctx, srv.URL+"/stops.csv", &bytes.Buffer{})
			if tt.secondFail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
