package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// StudentView is the seat picker and buzzer served at /.
func StudentView() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Classbuzz</title>
    <style>`+baseStyles+`
      #buzzer { width: 70vw; max-width: 320px; aspect-ratio: 1; border-radius: 50%; border: none; font-size: 2rem; color: #fff; }
      #buzzer.standby { background: #868e96; }
      #buzzer.active { background: #2f9e44; }
      #buzzer.locked { background: #c92a2a; }
    </style>
  </head>
  <body>
    <main class="shell">
      <header>
        <span class="tag">Classbuzz</span>
        <h1>Take your seat</h1>
      </header>
      <form id="joinForm" class="panel">
        <input name="seat" inputmode="numeric" placeholder="Seat number" autocomplete="off" required/>
        <button type="submit" class="primary">Join</button>
      </form>
      <div id="status" class="result">Not seated.</div>
      <button id="buzzer" class="standby" disabled>BUZZ</button>
    </main>
    <script>
      const status = document.getElementById("status");
      const buzzer = document.getElementById("buzzer");
      const joinForm = document.getElementById("joinForm");
      const scheme = location.protocol === "https:" ? "wss://" : "ws://";
      const socket = new WebSocket(scheme + location.host + "/ws");
      const send = (type, data) => socket.send(JSON.stringify({ type, data }));
      let seat = null;

      const setState = (state) => {
        buzzer.className = state;
        buzzer.disabled = state === "standby";
        status.textContent = seat ? "Seat " + seat + ": " + state : state;
      };

      socket.addEventListener("message", (event) => {
        const msg = JSON.parse(event.data);
        switch (msg.type) {
          case "player:setState":
            setState(msg.data);
            break;
          case "player:error":
            seat = null;
            status.textContent = msg.data;
            break;
          case "host:playerJoined":
            if (seat !== null && msg.data === seat) {
              status.textContent = "Seat " + seat + " joined. Waiting for the teacher.";
            }
            break;
        }
      });
      socket.addEventListener("close", () => {
        status.textContent = "Disconnected. Reload to rejoin.";
        buzzer.disabled = true;
      });

      joinForm.addEventListener("submit", (event) => {
        event.preventDefault();
        const value = joinForm.elements.seat.value.trim();
        seat = parseInt(value, 10);
        send("player:joinGame", value);
      });
      buzzer.addEventListener("click", () => send("player:buzz"));
    </script>
  </body>
</html>
`)
		return err
	})
}
