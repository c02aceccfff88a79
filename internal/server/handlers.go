package server

import (
	"fmt"
	"net/http"

	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/response"
)

// WebSocketHandler upgrades the request and hands the connection to the hub.
// A request asking for the moderator channel must carry a valid moderator
// token or it is rejected before the upgrade.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	role := RoleParticipant
	if wantsModerator(r) {
		if s.gate == nil || !s.gate.Authorized(r) {
			log.Audit(r.Context(), log.ActionRejectedDial, log.ClientIP(r), "moderator handshake rejected")
			response.Unauthorized(w, "Unauthorized")
			return
		}
		role = RoleModerator
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(conn, s.hub, log.ClientIP(r), role)
	if err := s.hub.Register(client); err != nil {
		client.logger.Warn().Err(err).Msg("hub unavailable; closing connection")
		client.closeConnection()
	}
}

// HealthHandler reports that the server is up.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "GoChat server is running!")
}

// TestPageHandler serves a minimal participant client for manual testing.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		log.L().Debug().Err(err).Msg("error writing test page")
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>GoChat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; background-color: #f9f9f9; }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button { padding: 5px 15px; background-color: #007cba; color: white; border: none; cursor: pointer; }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
        .system { color: gray; font-style: italic; }
    </style>
</head>
<body>
    <h1>GoChat Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>

    <div id="messages"></div>

    <script>
        let ws = null;
        let me = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');

        function addLine(text, cls) {
            const el = document.createElement('div');
            el.textContent = text;
            if (cls) el.className = cls;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            connectButton.textContent = connected ? 'Disconnect' : 'Connect';
        }

        function emit(event, data) {
            ws.send(JSON.stringify({ event: event, data: data }));
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');

            ws.onopen = function() {
                updateStatus(true);
                emit('join', '');
            };

            ws.onmessage = function(event) {
                const frame = JSON.parse(event.data);
                switch (frame.event) {
                case 'session':
                    me = frame.data;
                    addLine('You are ' + me.username, 'system');
                    break;
                case 'newMessage':
                    const m = frame.data;
                    if (m.type === 'system') {
                        addLine(m.content, 'system');
                    } else {
                        const who = me && m.userId === me.id ? 'You' : m.username;
                        addLine(who + ': ' + m.content);
                    }
                    break;
                case 'kicked':
                    addLine(frame.data.message, 'system');
                    break;
                }
            };

            ws.onclose = function() {
                addLine('Connection closed', 'system');
                updateStatus(false);
                ws = null;
            };
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        function sendMessage() {
            const content = messageInput.value.trim();
            if (content && ws && ws.readyState === WebSocket.OPEN) {
                emit('message', { userId: me ? me.id : '', content: content, timestamp: Date.now() });
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
