package web

// indexHTML is the whole UI. It is deliberately one self-contained page so
// the clock needs no asset pipeline.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Satellite Clock</title>
<style>
  body { font-family: system-ui, sans-serif; background: #111; color: #eee;
         display: flex; flex-direction: column; align-items: center; margin-top: 4rem; }
  #time { font-size: 5rem; font-variant-numeric: tabular-nums; }
  #date { font-size: 1.5rem; color: #aaa; }
  #source { margin-top: 0.5rem; color: #6c6; }
  form { margin-top: 2.5rem; }
  input, button { font-size: 1rem; padding: 0.3rem 0.6rem; background: #222;
                  color: #eee; border: 1px solid #444; border-radius: 4px; }
  #alarm { margin-top: 0.75rem; color: #fa5; }
</style>
</head>
<body>
<div id="time">--:--:--</div>
<div id="date"></div>
<div id="source"></div>
<form id="alarmForm">
  <input id="hour" type="number" min="0" max="23" placeholder="HH" required>
  <input id="minute" type="number" min="0" max="59" placeholder="MM" required>
  <button type="submit">Set alarm</button>
  <button type="button" id="clear">Clear</button>
  <button type="button" id="test">Test</button>
</form>
<div id="alarm"></div>
<script>
function render(s) {
  document.getElementById('time').textContent = s.clock.time || '--:--:--';
  document.getElementById('date').textContent = s.clock.date || '';
  document.getElementById('source').textContent = s.clock.source || '';
  document.getElementById('alarm').textContent =
    s.alarm.set ? 'Alarm set for ' + s.alarm.pretty : '';
}
function connect() {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/api/ws');
  ws.onmessage = function (ev) { render(JSON.parse(ev.data)); };
  ws.onclose = function () { setTimeout(connect, 2000); };
}
connect();
document.getElementById('alarmForm').addEventListener('submit', function (ev) {
  ev.preventDefault();
  fetch('/api/alarm', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({
      hour: parseInt(document.getElementById('hour').value, 10),
      minute: parseInt(document.getElementById('minute').value, 10)
    })
  });
});
document.getElementById('clear').addEventListener('click', function () {
  fetch('/api/alarm', {method: 'DELETE'});
});
document.getElementById('test').addEventListener('click', function () {
  fetch('/api/alarm/test', {method: 'POST'});
});
</script>
</body>
</html>
`
