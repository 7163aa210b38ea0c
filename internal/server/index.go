package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/model"
)

// indexData holds the template data for the comment wall page.
type indexData struct {
	CSRFToken string
	Intro     template.HTML
	MaxLen    int
	Width     int
	Height    int
	Theme     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		CSRFToken: s.csrf.tokenFor(w, r),
		MaxLen:    model.MaxTextLen,
		Width:     s.config.CloudWidth,
		Height:    s.config.CloudHeight,
	}
	if s.config.Intro != "" {
		data.Intro = renderMarkdown(s.config.Intro)
	}
	if c, err := r.Cookie("theme"); err == nil && (c.Value == "dark" || c.Value == "light") {
		data.Theme = c.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.log.Error("index template", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html{{if .Theme}} data-theme="{{.Theme}}"{{end}}>
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.CSRFToken}}">
<title>Word Wall</title>
<style>
  :root {
    --color-text: #222;
    --color-bg-page: #fff;
    --color-link: #0366d6;
    --color-border: #ddd;
    --color-bg-badge: #f0f0f0;
    --color-bg-subtle: #fafafa;
    --color-text-muted: #555;
    --color-like: #1f77b4;
  }
  [data-theme="dark"] {
    --color-text: #e0e0e0;
    --color-bg-page: #121212;
    --color-link: #58a6ff;
    --color-border: #444;
    --color-bg-badge: #333;
    --color-bg-subtle: #1a1a1a;
    --color-text-muted: #aaa;
    --color-like: #3a8fd6;
  }
  body { font-family: sans-serif; margin: 2em; color: var(--color-text); background: var(--color-bg-page); }
  a { color: var(--color-link); text-decoration: none; }
  a:hover { text-decoration: underline; }
  h1 { margin-bottom: 0.2em; }
  .intro { color: var(--color-text-muted); margin-bottom: 1em; }
  #comment-form { display: flex; gap: 0.6em; margin-bottom: 1.5em; }
  #comment-form input[type=text] { flex: 1; max-width: 30em; padding: 0.4em 0.6em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-subtle); color: var(--color-text); }
  #comment-form button { padding: 0.4em 1em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-badge); color: var(--color-text); cursor: pointer; }
  #word-cloud { position: relative; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-subtle); min-height: 4em; overflow: hidden; }
  #word-cloud .placeholder { color: var(--color-text-muted); padding: 1em; margin: 0; }
  #word-cloud text.word { fill: var(--color-text); cursor: pointer; }
  #word-cloud text.word:hover { fill: var(--color-link); }
  .like-button rect { fill: var(--color-like); }
  .like-button text { fill: #fff; font-size: 12px; font-family: sans-serif; }
  .like-button { cursor: pointer; }
  .theme-toggle { position: fixed; top: 1em; right: 1em; padding: 0.4em 0.8em; border: 1px solid var(--color-border); border-radius: 4px; background: var(--color-bg-badge); color: var(--color-text); cursor: pointer; font-size: 0.9em; }
</style>
</head>
<body>
<button class="theme-toggle" aria-label="Toggle dark mode">{{if eq .Theme "dark"}}☀️{{else}}🌙{{end}}</button>
<h1>Word Wall</h1>
{{if .Intro}}<div class="intro">{{.Intro}}</div>{{end}}
<form id="comment-form">
  <input type="text" name="text" maxlength="{{.MaxLen}}" placeholder="Say something" required>
  <button type="submit">Post</button>
</form>
<div id="word-cloud" data-width="{{.Width}}" data-height="{{.Height}}"></div>
<script>
var SVG_NS = "http://www.w3.org/2000/svg";
var cloudEl = document.getElementById("word-cloud");
var form = document.getElementById("comment-form");
var csrfToken = document.querySelector("meta[name=csrf-token]").getAttribute("content");
var renderSeq = 0;
var shownSeq = 0;

async function refresh() {
  var seq = ++renderSeq;
  try {
    var q = "?width=" + cloudEl.dataset.width + "&height=" + cloudEl.dataset.height;
    var resp = await fetch("/cloud" + q, {credentials: "same-origin"});
    if (!resp.ok) throw new Error("HTTP " + resp.status);
    var body = await resp.text();
    if (seq < shownSeq) return;
    shownSeq = seq;
    cloudEl.innerHTML = body;
  } catch (err) {
    console.error(err);
  }
}

function removeOverlay() {
  var old = cloudEl.querySelector("g.like-button");
  if (old) old.remove();
}

function showOverlay(word) {
  removeOverlay();
  var svg = cloudEl.querySelector("svg");
  var x = parseFloat(word.dataset.x) + svg.width.baseVal.value / 2;
  var y = parseFloat(word.dataset.y) + svg.height.baseVal.value / 2;
  var g = document.createElementNS(SVG_NS, "g");
  g.setAttribute("class", "like-button");
  g.setAttribute("transform", "translate(" + x + "," + y + ")");
  var rect = document.createElementNS(SVG_NS, "rect");
  rect.setAttribute("width", "50");
  rect.setAttribute("height", "20");
  rect.setAttribute("rx", "3");
  var label = document.createElementNS(SVG_NS, "text");
  label.setAttribute("x", "25");
  label.setAttribute("y", "14");
  label.setAttribute("text-anchor", "middle");
  label.textContent = "Like (" + word.dataset.likes + ")";
  g.appendChild(rect);
  g.appendChild(label);
  g.addEventListener("mouseleave", removeOverlay);
  g.addEventListener("click", function() { like(word.dataset.id); });
  svg.appendChild(g);
}

async function like(id) {
  try {
    var resp = await fetch("/api/comments/" + id + "/like", {
      method: "POST",
      credentials: "same-origin",
      headers: {"X-CSRFToken": csrfToken}
    });
    if (!resp.ok) throw new Error("HTTP " + resp.status);
    await refresh();
  } catch (err) {
    console.error(err);
  }
}

cloudEl.addEventListener("mouseover", function(e) {
  var word = e.target.closest("text.word");
  if (word) showOverlay(word);
});
cloudEl.addEventListener("mouseout", function(e) {
  var word = e.target.closest("text.word");
  if (!word) return;
  if (e.relatedTarget && e.relatedTarget.closest && e.relatedTarget.closest("g.like-button")) return;
  removeOverlay();
});

form.addEventListener("submit", async function(e) {
  e.preventDefault();
  try {
    var resp = await fetch("/api/comments", {
      method: "POST",
      credentials: "same-origin",
      headers: {"X-CSRFToken": csrfToken},
      body: new FormData(form)
    });
    var data = await resp.json();
    if (resp.ok) {
      form.reset();
      await refresh();
    } else {
      alert("Error: " + JSON.stringify(data.errors || data.error));
    }
  } catch (err) {
    console.error(err);
  }
});

var html = document.documentElement;
if (!html.hasAttribute("data-theme")) {
  html.setAttribute("data-theme", window.matchMedia("(prefers-color-scheme: dark)").matches ? "dark" : "light");
}
var themeBtn = document.querySelector("[aria-label=\"Toggle dark mode\"]");
function syncToggleBtn() {
  if (themeBtn) { themeBtn.textContent = html.getAttribute("data-theme") === "dark" ? "☀️" : "🌙"; }
}
syncToggleBtn();
if (themeBtn) {
  themeBtn.addEventListener("click", function() {
    var next = html.getAttribute("data-theme") === "dark" ? "light" : "dark";
    html.setAttribute("data-theme", next);
    document.cookie = "theme=" + next + "; path=/; max-age=31536000";
    syncToggleBtn();
  });
}

refresh();
</script>
</body>
</html>
`))
