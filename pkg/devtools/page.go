package devtools

// indexPage shows the container's HTML and a live log of mutations.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>quark devtools</title>
<style>
body { font: 13px/1.4 ui-monospace, monospace; margin: 0; display: grid; grid-template-columns: 1fr 1fr; height: 100vh; }
section { overflow: auto; padding: 8px; border-right: 1px solid #ddd; }
h1 { font-size: 13px; margin: 0 0 8px; }
pre { white-space: pre-wrap; margin: 0; }
li { list-style: none; }
.op { color: #7a3e9d; }
</style>
</head>
<body>
<section><h1>container</h1><pre id="html"></pre></section>
<section><h1>mutations <span id="count">0</span></h1><ul id="log"></ul></section>
<script>
(function() {
    'use strict';

    var html = document.getElementById('html');
    var log = document.getElementById('log');
    var count = document.getElementById('count');
    var n = 0;
    var refresh = null;

    function reload() {
        fetch('/html').then(function(r) { return r.text(); }).then(function(t) { html.textContent = t; });
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onmessage = function(e) {
            var msg = JSON.parse(e.data);
            if (msg.type === 'hello') {
                html.textContent = msg.html;
                return;
            }
            var m = msg.mutation;
            var li = document.createElement('li');
            li.innerHTML = '<span class="op"></span> #<span></span> <span></span>';
            li.children[0].textContent = m.op;
            li.children[1].textContent = m.node;
            li.children[2].textContent = (m.name || '') + (m.value ? '=' + m.value : '');
            log.insertBefore(li, log.firstChild);
            count.textContent = ++n;
            clearTimeout(refresh);
            refresh = setTimeout(reload, 50);
        };

        ws.onclose = function() {
            setTimeout(connect, 1000);
        };
    }

    connect();
})();
</script>
</body>
</html>
`
