// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"log"
	"net/http"
)

// WebSocketHandler handles WebSocket upgrade requests. It validates that the
// request uses the GET method, upgrades the HTTP connection to WebSocket,
// creates a Client, and registers it with the hub, which launches the
// read/write pumps.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr)
	s.hub.register <- client
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "FluxChat server is running!")
}

// TestPageHandler serves an HTML page for exercising the room protocol from a
// browser: joining and leaving rooms, chat messages, typing indicators, and
// presence updates.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>FluxChat Room Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #events {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 5px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        #presence { color: #155724; margin: 10px 0; }
        #typing { color: #888; font-style: italic; }
    </style>
</head>
<body>
    <h1>FluxChat Room Test</h1>

    <div>
        <input type="text" id="name" placeholder="Your name" value="tester">
        <input type="text" id="room" placeholder="Room" value="general">
        <button onclick="joinRoom()">Join</button>
        <button onclick="leaveRoom()">Leave</button>
    </div>

    <div id="presence"></div>
    <div id="events"></div>
    <div id="typing"></div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message...">
        <button onclick="sendMessage()">Send</button>
    </div>

    <script>
        const ws = new WebSocket('ws://' + location.host + '/ws');
        const events = document.getElementById('events');
        const input = document.getElementById('messageInput');

        function show(text) {
            const el = document.createElement('div');
            el.textContent = text;
            events.appendChild(el);
            events.scrollTop = events.scrollHeight;
        }

        ws.onmessage = function(e) {
            const msg = JSON.parse(e.data);
            switch (msg.type) {
                case 'presence':
                    document.getElementById('presence').textContent =
                        'In room: ' + msg.users.join(', ');
                    break;
                case 'typing':
                    document.getElementById('typing').textContent =
                        msg.typingUsers.length ? msg.typingUsers.join(', ') + ' typing...' : '';
                    break;
                case 'message':
                    show(msg.sender + ': ' + msg.content);
                    break;
                case 'reaction':
                    show(msg.sender + ' reacted ' + msg.emoji + ' to ' + msg.target);
                    break;
                default:
                    show('[' + msg.type + '] ' + (msg.content || msg.message || msg.sender || ''));
            }
        };

        function room() { return document.getElementById('room').value; }

        function joinRoom() {
            ws.send(JSON.stringify({type: 'join', room: room(),
                sender: document.getElementById('name').value}));
        }

        function leaveRoom() {
            ws.send(JSON.stringify({type: 'leave', room: room()}));
        }

        function sendMessage() {
            const content = input.value.trim();
            if (!content) return;
            ws.send(JSON.stringify({type: 'message', room: room(), content: content}));
            input.value = '';
            ws.send(JSON.stringify({type: 'typing', room: room(), typing: false}));
        }

        input.addEventListener('input', function() {
            ws.send(JSON.stringify({type: 'typing', room: room(), typing: input.value.length > 0}));
        });

        input.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
