package render

// Stylesheet is served at /assets/app.css
const Stylesheet = `body{margin:0;font-family:system-ui,sans-serif;background:#f8fafc;color:#334155;display:flex;flex-direction:column;min-height:100vh}
.header{display:flex;gap:1rem;align-items:center;padding:1rem 2rem;color:#fff;background:linear-gradient(90deg,#0284c7,#0ea5e9,#34d399)}
.header h1{margin:0;font-size:1.4rem}.header p{margin:0;font-size:.85rem;opacity:.9}
.badge{width:3rem;height:3rem;border-radius:.4rem;background:rgba(255,255,255,.2);display:flex;align-items:center;justify-content:center;font-weight:700}
.layout{display:grid;grid-template-columns:1fr 1fr;gap:1.5rem;padding:1.5rem 2rem;flex:1}
@media (max-width:900px){.layout{grid-template-columns:1fr}}
.card,.section{background:#fff;border:1px solid #f1f5f9;border-radius:.75rem;padding:1.25rem;box-shadow:0 1px 3px rgba(0,0,0,.06)}
.center{display:flex;align-items:center;justify-content:center;min-height:12rem}
.muted{color:#64748b;font-size:.9rem}
textarea{width:100%;min-height:22rem;box-sizing:border-box;padding:1rem;border:1px solid #e2e8f0;border-radius:.5rem;resize:vertical}
.actions{display:flex;gap:.5rem;flex-wrap:wrap;margin-top:.75rem}
button,.button{padding:.5rem .9rem;border:1px solid #cbd5e1;border-radius:.4rem;background:#fff;color:#334155;font-size:.9rem;text-decoration:none;cursor:pointer}
button:disabled{opacity:.5;cursor:not-allowed}
.primary{background:#0284c7;color:#fff;border-color:transparent}
.record[aria-pressed=true]{background:#f43f5e;color:#fff}
.notice,.alert{background:#fff1f2;border:1px solid #fecdd3;color:#9f1239;padding:1rem;border-radius:.5rem}
.alert-title{font-weight:600}
.note-head{display:flex;justify-content:space-between;align-items:flex-start;gap:1rem}
.sections{display:grid;gap:1rem}
.section h3{margin:0 0 .75rem;font-size:.8rem;text-transform:uppercase;letter-spacing:.05em;color:#0369a1}
.kv{display:grid;grid-template-columns:1fr 3fr;gap:1rem;font-size:.9rem;margin:.3rem 0}.k{color:#475569;font-weight:500}
.block{margin-top:.75rem;font-size:.9rem}.block-title{font-weight:600}
.tone-warning{background:#fffbeb;border:1px solid #fef3c7;color:#92400e;padding:.75rem;border-radius:.4rem}
.tone-danger{background:#fff1f2;border:1px solid #ffe4e6;color:#9f1239;padding:.75rem;border-radius:.4rem}
.raw-json{background:#f8fafc;padding:1rem;border-radius:.4rem;overflow:auto;max-height:480px;font-size:.85rem}
.footer{text-align:center;color:#64748b;font-size:.85rem;padding:1rem;background:#fff}
.boundary{max-width:48rem;margin:4rem auto;padding:2rem;background:#fff1f2;border:1px solid #fecdd3;border-radius:.75rem}
.sr-only{position:absolute;width:1px;height:1px;overflow:hidden;clip:rect(0,0,0,0)}
`

// Script is served at /assets/app.js
const Script = `(function () {
  var btn = document.getElementById("copy-note");
  if (!btn || !navigator.clipboard) return;
  btn.addEventListener("click", function () {
    fetch(btn.getAttribute("data-source"), { credentials: "same-origin" })
      .then(function (r) { if (!r.ok) throw new Error(r.statusText); return r.text(); })
      .then(function (text) { return navigator.clipboard.writeText(text); })
      .then(function () {
        btn.textContent = "Copied";
        setTimeout(function () { btn.textContent = "Copy"; }, 2000);
      })
      .catch(function (e) { console.error("Copy failed", e); });
  });
})();
`
