package feature

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/envmap-cli/internal/fetcher"
)

// Resolve turns a feature source into a local file path. Remote http(s) and
// ftp sources are downloaded into tempDir. ZIP archives are extracted and
// searched for the first file with extension wantExt.
func Resolve(ctx context.Context, src, tempDir, wantExt string, router fetcher.Router) (string, error) {
	log := zap.L().With(zap.String("component", "feature.resolve"), zap.String("source", src))

	local := src
	if fetcher.IsRemote(src) {
		u, err := url.Parse(src)
		if err != nil {
			return "", eris.Wrap(err, "feature: parse source url")
		}
		name := path.Base(u.Path)
		if name == "" || name == "/" || name == "." {
			return "", eris.Errorf("feature: cannot derive a file name from %s", src)
		}
		local = filepath.Join(tempDir, name)
		n, err := router.Save(ctx, src, local)
		if err != nil {
			return "", eris.Wrapf(err, "feature: download %s", src)
		}
		log.Info("feature source downloaded", zap.String("path", local), zap.Int64("bytes", n))
	}

	if !strings.EqualFold(filepath.Ext(local), ".zip") {
		return local, nil
	}

	extractDir := filepath.Join(tempDir, strings.TrimSuffix(filepath.Base(local), filepath.Ext(local)))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "feature: create extract dir")
	}
	if _, err := fetcher.Unpack(local, extractDir); err != nil {
		return "", eris.Wrapf(err, "feature: extract %s", local)
	}
	found, err := fetcher.FindByExt(extractDir, wantExt)
	if err != nil {
		return "", eris.Wrapf(err, "feature: locate %s in %s", wantExt, local)
	}
	log.Debug("feature source extracted", zap.String("path", found))
	return found, nil
}
