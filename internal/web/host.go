package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const baseStyles = `
      body { font-family: system-ui, sans-serif; margin: 0; background: #f8f9fa; color: #212529; }
      .shell { max-width: 960px; margin: 0 auto; padding: 1.5rem; display: grid; gap: 1rem; justify-items: center; }
      .tag { text-transform: uppercase; letter-spacing: .1em; font-size: .75rem; color: #495057; }
      .panel { display: flex; flex-wrap: wrap; gap: .5rem; align-items: center; }
      .primary { background: #1971c2; color: #fff; border: none; padding: .5rem 1rem; border-radius: .25rem; }
      .result { min-height: 1.5rem; }`

// HostView is the teacher console served at /host. joinURL is shown next to
// the QR code so students without a camera can type it.
func HostView(joinURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Classbuzz host</title>
    <style>`+baseStyles+`
      #grid { display: grid; gap: 4px; }
      .seat { width: 48px; height: 48px; display: flex; align-items: center; justify-content: center; border-radius: 4px; background: #dee2e6; cursor: pointer; }
      .seat.active { background: #b2f2bb; }
      .seat.locked { background: #ffc9c9; }
      .seat.present { outline: 2px solid #1971c2; }
      .seat.target { font-weight: bold; }
      #log li.valid { color: #2f9e44; }
      #log li.invalid { color: #c92a2a; }
    </style>
  </head>
  <body>
    <main class="shell">
      <header>
        <span class="tag">Classbuzz host</span>
        <h1>Classroom</h1>
      </header>
      <section class="panel">
        <img src="/qr" alt="Join QR code" width="128" height="128"/>
        <code>`+templ.EscapeString(joinURL)+`</code>
      </section>
      <form id="layoutForm" class="panel">
        <input name="rows" type="number" min="1" value="5" required/>
        <input name="cols" type="number" min="1" value="5" required/>
        <button type="submit" class="primary">New game</button>
      </form>
      <section class="panel">
        <select id="mode">
          <option value="all">All</option>
          <option value="cross">Cross</option>
          <option value="square">Square</option>
        </select>
        <input id="target" type="number" min="1" placeholder="Target seat"/>
        <button id="setMode" class="primary">Open round</button>
        <button id="reset">Reset</button>
      </section>
      <div id="error" class="result"></div>
      <div id="grid"></div>
      <ol id="log"></ol>
    </main>
    <script>
      const scheme = location.protocol === "https:" ? "wss://" : "ws://";
      const socket = new WebSocket(scheme + location.host + "/ws?role=host");
      const send = (type, data) => socket.send(JSON.stringify({ type, data }));
      const grid = document.getElementById("grid");
      const log = document.getElementById("log");
      const errorBox = document.getElementById("error");
      const targetInput = document.getElementById("target");
      const present = new Map();
      let layout = { rows: 0, cols: 0 };

      const seatCell = (seat) => grid.querySelector('[data-seat="' + seat + '"]');
      const drawGrid = () => {
        grid.innerHTML = "";
        grid.style.gridTemplateColumns = "repeat(" + layout.cols + ", 48px)";
        for (let seat = 1; seat <= layout.rows * layout.cols; seat++) {
          const cell = document.createElement("div");
          cell.className = "seat";
          cell.dataset.seat = seat;
          cell.textContent = seat;
          cell.addEventListener("click", () => { targetInput.value = seat; });
          grid.appendChild(cell);
        }
      };
      const markPresent = (seat, delta) => {
        const count = (present.get(seat) || 0) + delta;
        count > 0 ? present.set(seat, count) : present.delete(seat);
        const cell = seatCell(seat);
        if (cell) cell.classList.toggle("present", count > 0);
      };

      socket.addEventListener("message", (event) => {
        const msg = JSON.parse(event.data);
        switch (msg.type) {
          case "host:updateGridState":
            errorBox.textContent = "";
            msg.data.active.forEach((seat) => { const c = seatCell(seat); if (c) c.className = "seat active" + (present.has(seat) ? " present" : ""); });
            msg.data.locked.forEach((seat) => { const c = seatCell(seat); if (c) c.className = "seat locked" + (present.has(seat) ? " present" : ""); });
            break;
          case "host:playerJoined":
            markPresent(msg.data, 1);
            break;
          case "host:playerLeft":
            markPresent(msg.data, -1);
            break;
          case "host:logBuzz": {
            const item = document.createElement("li");
            item.className = msg.data.valid ? "valid" : "invalid";
            item.textContent = new Date(msg.data.time).toLocaleTimeString() + " seat " + msg.data.seat + (msg.data.valid ? " buzzed in" : " buzzed from a locked seat");
            log.prepend(item);
            break;
          }
          case "host:error":
            errorBox.textContent = msg.data;
            break;
        }
      });

      document.getElementById("layoutForm").addEventListener("submit", (event) => {
        event.preventDefault();
        const form = event.target;
        layout = { rows: parseInt(form.elements.rows.value, 10), cols: parseInt(form.elements.cols.value, 10) };
        present.clear();
        drawGrid();
        send("host:createGame", layout);
      });
      document.getElementById("setMode").addEventListener("click", () => {
        const target = parseInt(targetInput.value, 10);
        const data = { mode: document.getElementById("mode").value };
        if (target > 0) data.target = target;
        send("host:setMode", data);
      });
      document.getElementById("reset").addEventListener("click", () => send("host:reset"));
    </script>
  </body>
</html>
`)
		return err
	})
}
