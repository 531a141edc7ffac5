package widget

// pageHTML talks to the /api endpoints; assistant HTML is produced server-side
// and user text is inserted with textContent only.
var pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Prompt Generator Chat</title>
<style>
*{box-sizing:border-box}
html,body{height:100%;margin:0;font-family:system-ui,sans-serif;background:#f7f7fb}
.app{display:flex;flex-direction:column;height:100%;max-width:860px;margin:0 auto}
header{display:flex;align-items:center;gap:1rem;padding:.75rem 1rem;border-bottom:1px solid #e5e5ef}
header h1{font-size:1.1rem;margin:0;flex:1}
header small{color:#777}
button{cursor:pointer;border:0;border-radius:8px;padding:.5rem .9rem;background:#ff6b6b;color:#fff}
button:disabled{opacity:.5;cursor:not-allowed}
#messagesContainer{flex:1;overflow-y:auto;padding:1rem}
.message{display:flex;margin:.5rem 0}
.message.user{justify-content:flex-end}
.message-content{max-width:80%;padding:.75rem 1rem;border-radius:12px;background:#fff;line-height:1.45;white-space:normal}
.message.user .message-content{background:#4ecdc4;color:#fff;white-space:pre-wrap}
.quick{display:flex;gap:.5rem;flex-wrap:wrap;padding:0 1rem}
.quick-btn{background:#eef;color:#333}
footer{display:flex;gap:.5rem;padding:1rem;border-top:1px solid #e5e5ef}
#messageInput{flex:1;resize:none;border-radius:8px;border:1px solid #ccd;padding:.6rem;font:inherit;max-height:120px}
#typingIndicator{display:none;padding:0 1rem;color:#888}
#typingIndicator.show{display:block}
.prompts-container{background:rgba(255,107,107,.05);border:1px solid rgba(255,107,107,.2);border-radius:12px;padding:1rem;margin:.5rem 0}
.prompt-item{display:flex;align-items:flex-start;gap:.75rem;margin-bottom:.75rem;padding:.75rem;background:rgba(255,255,255,.7);border-radius:8px;border-left:3px solid #ff6b6b}
.prompt-item:last-child{margin-bottom:0}
.prompt-number{background:linear-gradient(135deg,#ff6b6b,#4ecdc4);color:#fff;width:24px;height:24px;border-radius:50%;display:flex;align-items:center;justify-content:center;font-size:.75rem;font-weight:600;flex-shrink:0}
.prompt-text{flex:1;font-size:.9rem;line-height:1.4;color:#333}
pre{background:#1e1e2e;color:#eee;padding:.75rem;border-radius:8px;overflow-x:auto}
.notification{position:fixed;top:20px;right:20px;padding:12px 20px;border-radius:8px;color:#fff;font-weight:500;z-index:1000;max-width:300px}
.notification.success{background:#10b981}.notification.error{background:#ef4444}.notification.info{background:#3b82f6}
</style>
</head>
<body>
<div class="app">
<header>
<h1>Prompt Generator</h1>
<small>Session: <span id="sessionId">…</span></small>
<button id="exportBtn" title="Export history">Export</button>
<button id="newSessionBtn" title="Ctrl/Cmd+N">New session</button>
</header>
<div id="messagesContainer"></div>
<div id="typingIndicator">Generating…</div>
<div class="quick" id="quickActions"></div>
<footer>
<textarea id="messageInput" rows="1" placeholder="Describe the prompt you need… (Enter to send, Shift+Enter for newline)"></textarea>
<button id="sendBtn">Send</button>
</footer>
</div>
<script>
(function(){
const api = (p, opts) => fetch('/api' + p, Object.assign({headers:{'Content-Type':'application/json'}}, opts || {}));
const el = id => document.getElementById(id);
const messages = el('messagesContainer'), input = el('messageInput'), sendBtn = el('sendBtn');
let sessionId = null, loading = false;

function notify(text, type){
  const n = document.createElement('div');
  n.className = 'notification ' + (type || 'info');
  n.textContent = text;
  document.body.appendChild(n);
  setTimeout(() => n.remove(), 4000);
}
function showSession(id){ sessionId = id; el('sessionId').textContent = id; }
function addMessage(role, html){
  const div = document.createElement('div');
  div.className = 'message ' + role;
  const content = document.createElement('div');
  content.className = 'message-content';
  content.innerHTML = html;
  div.appendChild(content);
  messages.appendChild(div);
  messages.scrollTop = messages.scrollHeight;
}
function setLoading(v){
  loading = v; sendBtn.disabled = v; input.disabled = v;
  el('typingIndicator').classList.toggle('show', v);
}
function resize(){ input.style.height = 'auto'; input.style.height = Math.min(input.scrollHeight, 120) + 'px'; }

async function start(){
  const res = await api('/sessions', {method:'POST'});
  const body = await res.json();
  showSession(body.session.id);
}
async function send(){
  const text = input.value.trim();
  if (!text || loading || !sessionId) return;
  input.value = ''; resize();
  setLoading(true);
  try {
    const res = await api('/sessions/' + encodeURIComponent(sessionId) + '/messages', {method:'POST', body: JSON.stringify({chatInput: text})});
    const body = await res.json();
    if (!res.ok) { notify(body.error || ('HTTP ' + res.status), 'error'); return; }
    addMessage('user', body.user.html);
    addMessage('ai', body.assistant.html);
  } catch (e) {
    notify('Network error: the chat server is unreachable.', 'error');
  } finally {
    setLoading(false);
    input.focus();
  }
}
async function newSession(){
  if (!sessionId) return;
  const res = await api('/sessions/' + encodeURIComponent(sessionId) + '/reset', {method:'POST'});
  if (!res.ok) { await start(); } else { showSession((await res.json()).session.id); }
  messages.innerHTML = '';
  notify('New session started!', 'success');
}
function exportHistory(){
  if (!sessionId) return;
  const a = document.createElement('a');
  a.href = '/api/sessions/' + encodeURIComponent(sessionId) + '/export';
  a.download = 'prompt-generator-history-' + sessionId + '.json';
  document.body.appendChild(a); a.click(); a.remove();
  notify('Chat history exported successfully!', 'success');
}

sendBtn.addEventListener('click', send);
input.addEventListener('input', resize);
input.addEventListener('keydown', e => {
  if (e.key === 'Enter' && !e.shiftKey && !e.ctrlKey && !e.metaKey) { e.preventDefault(); send(); }
});
document.addEventListener('keydown', e => {
  if ((e.ctrlKey || e.metaKey) && e.key === 'Enter') { e.preventDefault(); send(); }
  if ((e.ctrlKey || e.metaKey) && e.key === 'n') { e.preventDefault(); newSession(); }
});
el('newSessionBtn').addEventListener('click', newSession);
el('exportBtn').addEventListener('click', exportHistory);
api('/presets').then(r => r.json()).then(items => {
  items.forEach(p => {
    const b = document.createElement('button');
    b.className = 'quick-btn';
    b.textContent = p.label;
    b.addEventListener('click', () => { input.value = p.query; resize(); input.focus(); });
    el('quickActions').appendChild(b);
  });
}).catch(() => {});
window.exportChat = exportHistory;
start().catch(() => notify('Could not start a session.', 'error'));
})();
</script>
</body>
</html>`
