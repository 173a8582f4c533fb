package render

import "html/template"

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1.0"/>
  <meta name="generator" content="envmap"/>
  {{- if .RunID}}
  <meta name="envmap-run-id" content="{{.RunID}}"/>
  {{- end}}
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  {{- if .Markers}}
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/4.7.0/css/font-awesome.min.css"/>
  <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css"/>
  <script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.min.js"></script>
  {{- end}}
  {{- if .Cluster}}
  <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css"/>
  <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css"/>
  <script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
  {{- end}}
  <style>
    html, body { height: 100%; margin: 0; }
    #map { position: absolute; top: 0; bottom: 0; right: 0; left: 0; }
    .legend {
      position: absolute; bottom: 24px; left: 12px; z-index: 1000;
      background: #fff; padding: 8px 10px; border-radius: 4px;
      box-shadow: 0 1px 4px rgba(0,0,0,0.3); font: 13px/1.4 sans-serif;
    }
    .legend h4 { margin: 0 0 4px; font-size: 13px; }
    .legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; border: 1px solid #333; }
  </style>
</head>
<body>
  <div id="map"></div>
  {{- if .Legend}}
  <div class="legend">
    <h4>{{.Title}}</h4>
    {{- range .Legend}}
    <div><i style="background: {{.Color}}"></i>{{.Label}}</div>
    {{- end}}
  </div>
  {{- end}}
  <script>
    const data = {{.Data}};
    const map = L.map('map').setView(data.center, data.zoom);
    L.tileLayer(data.tiles.url, {
      attribution: data.tiles.attribution,
      subdomains: data.tiles.subdomains || 'abc',
      maxZoom: data.tiles.maxZoom
    }).addTo(map);

    L.geoJSON(data.polygons, {
      style: function (f) { return f.properties.style; },
      onEachFeature: function (f, layer) {
        if (f.properties.tooltip) { layer.bindTooltip(f.properties.tooltip, {sticky: true}); }
      }
    }).addTo(map);

    data.circles.forEach(function (c) {
      const m = L.circleMarker([c.lat, c.lon], {
        radius: c.radius, color: c.color, weight: c.weight,
        fill: true, fillColor: c.fillColor, fillOpacity: c.fillOpacity
      });
      if (c.tooltip) { m.bindTooltip(c.tooltip); }
      m.addTo(map);
    });

    if (data.markers.length > 0) {
      const group = data.cluster ? L.markerClusterGroup() : L.layerGroup();
      data.markers.forEach(function (mk) {
        const icon = L.AwesomeMarkers.icon({icon: mk.icon, markerColor: mk.color, prefix: 'fa'});
        const m = L.marker([mk.lat, mk.lon], {icon: icon});
        if (mk.popup) { m.bindPopup(mk.popup); }
        if (mk.tooltip) { m.bindTooltip(mk.tooltip); }
        group.addLayer(m);
      });
      group.addTo(map);
    }
  </script>
</body>
</html>
`))
