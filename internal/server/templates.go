package server

// viewerTemplate renders one or more Mermaid diagrams. With a single slide
// the navigation controls are hidden.
const viewerTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>javadeps: {{.Title}}</title>
  <style>
    *, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      flex-direction: column;
      align-items: center;
      min-height: 100vh;
      padding: 1rem;
      background-color: #f8f9fa;
      color: #212529;
    }
    @media (prefers-color-scheme: dark) {
      body { background-color: #1a1a2e; color: #e0e0e0; }
      .controls button, .controls select { background-color: #2d2d44; color: #e0e0e0; border-color: #444; }
      .controls a { color: #9ecbff; }
    }
    h1 { margin: 1rem 0 0.25rem; font-size: 1.4rem; font-weight: 600; }
    .stats { font-size: 0.85rem; opacity: 0.75; margin-bottom: 0.75rem; }
    .controls {
      display: flex;
      gap: 0.5rem;
      margin-bottom: 1rem;
      flex-wrap: wrap;
      justify-content: center;
      align-items: center;
    }
    .controls button, .controls select {
      padding: 0.4rem 0.9rem;
      font-size: 0.9rem;
      border: 1px solid #ccc;
      border-radius: 6px;
      background-color: #ffffff;
      color: #212529;
      cursor: pointer;
    }
    .controls a { font-size: 0.85rem; }
    .nav.hidden { display: none; }
    .slide-title { font-weight: 600; margin-bottom: 0.5rem; }
    .diagram-viewport {
      width: 100%;
      overflow: auto;
      flex: 1;
      display: flex;
      justify-content: center;
      align-items: flex-start;
      padding: 1rem;
    }
    .diagram-container { width: 100%; transform-origin: top center; transition: transform 0.2s ease; }
    .slide-panel { display: block; }
    .slide-panel.ready:not(.active) { display: none; }

    .mermaid svg { font-size: 18px !important; }
    .mermaid svg .classTitleText { font-size: 26px !important; }
    .mermaid svg .nodeLabel { font-size: 18px !important; }

    .mermaid svg g.node.interfaceStyle > g:first-child > path:first-child { fill: #2374ab !important; }
    .mermaid svg g.node.interfaceStyle .nodeLabel { color: #fff !important; }
    .mermaid svg g.node.implStyle > g:first-child > path:first-child { fill: #4a9c6d !important; }
    .mermaid svg g.node.implStyle .nodeLabel { color: #fff !important; }
    .mermaid svg g.node.externalStyle > g:first-child > path:first-child { fill: #e9ecef !important; }
    .mermaid svg g.node.externalStyle .nodeLabel { color: #6c757d !important; font-style: italic; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="stats">{{.TypeCount}} types, {{.EdgeCount}} dependencies</div>

  <div class="controls">
    <span class="nav{{if le .SlideCount 1}} hidden{{end}}">
      <button id="prev-btn" title="Previous Slide">Prev</button>
      <select id="slide-select">
        {{range .Slides}}<option value="{{.Index}}">{{.Title}}</option>
        {{end}}
      </select>
      <button id="next-btn" title="Next Slide">Next</button>
      <span id="slide-counter">1 / {{.SlideCount}}</span>
    </span>
    <button id="zoom-in" title="Zoom In">+ Zoom In</button>
    <button id="zoom-out" title="Zoom Out">- Zoom Out</button>
    <button id="zoom-reset" title="Reset Zoom">Reset</button>
    <button id="copy-src" title="Copy Mermaid Source">Copy Source</button>
    <a href="/graph.dot">graph.dot</a>
    <a href="/graph.mmd">graph.mmd</a>
    <a href="/report.txt">report.txt</a>
    <a href="/api/types">types.json</a>
  </div>

  <div class="slide-title" id="slide-title"></div>

  <div class="diagram-viewport">
    <div class="diagram-container" id="diagram-container">
      {{range .Slides}}<div class="slide-panel" id="slide-{{.Index}}">
        <pre class="mermaid">{{.Mermaid}}</pre>
      </div>
      {{end}}
    </div>
  </div>

  <script src="https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"></script>
  <script>
    mermaid.initialize({
      startOnLoad: false,
      theme: 'base',
      maxTextSize: 500000,
      themeVariables: {
        primaryColor: '#ffffff',
        primaryBorderColor: '#cccccc',
        primaryTextColor: '#000000',
        lineColor: '#555555',
        fontSize: '16px'
      }
    });

    (function() {
      var current = 0;
      var titles = {{.Titles}};
      var sources = {{.Sources}};
      var total = titles.length;

      function showSlide(idx) {
        idx = Math.max(0, Math.min(total - 1, idx));
        document.querySelectorAll('.slide-panel').forEach(function(p) { p.classList.remove('active'); });
        document.getElementById('slide-' + idx).classList.add('active');
        document.getElementById('slide-counter').textContent = (idx + 1) + ' / ' + total;
        document.getElementById('slide-title').textContent = total > 1 ? titles[idx] : '';
        document.getElementById('slide-select').value = idx;
        current = idx;
      }

      // Panels stay visible until Mermaid has measured their text.
      mermaid.run().then(function() {
        document.querySelectorAll('pre.mermaid svg').forEach(function(svg) {
          var vb = svg.getAttribute('viewBox');
          var viewport = svg.closest('.diagram-viewport');
          if (!vb || !viewport) return;
          var w = parseFloat(vb.split(/\s+/)[2]);
          var available = viewport.clientWidth - 32;
          if (w > available) {
            svg.style.width = '100%';
            svg.style.maxWidth = '100%';
          } else if (w > 0) {
            svg.style.width = w + 'px';
            svg.style.maxWidth = 'none';
          }
        });
        document.querySelectorAll('.slide-panel').forEach(function(p) { p.classList.add('ready'); });
      });

      var params = new URLSearchParams(window.location.search);
      showSlide(parseInt(params.get('slide') || '0', 10) || 0);

      document.getElementById('prev-btn').addEventListener('click', function() { showSlide(current - 1); });
      document.getElementById('next-btn').addEventListener('click', function() { showSlide(current + 1); });
      document.getElementById('slide-select').addEventListener('change', function() {
        showSlide(parseInt(this.value, 10));
      });
      document.addEventListener('keydown', function(e) {
        if (e.key === 'ArrowLeft') { showSlide(current - 1); }
        if (e.key === 'ArrowRight') { showSlide(current + 1); }
      });

      var scale = 1;
      var container = document.getElementById('diagram-container');
      function zoom(next) {
        scale = Math.max(0.1, Math.min(10, next));
        container.style.transform = 'scale(' + scale + ')';
      }
      document.getElementById('zoom-in').addEventListener('click', function() { zoom(scale + 0.15); });
      document.getElementById('zoom-out').addEventListener('click', function() { zoom(scale - 0.15); });
      document.getElementById('zoom-reset').addEventListener('click', function() { zoom(1); });

      document.getElementById('copy-src').addEventListener('click', function() {
        var btn = this;
        navigator.clipboard.writeText(sources[current]).then(function() {
          var orig = btn.textContent;
          btn.textContent = 'Copied!';
          setTimeout(function() { btn.textContent = orig; }, 1500);
        });
      });
    })();
  </script>
</body>
</html>
`
