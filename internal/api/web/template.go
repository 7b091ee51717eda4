package web

import (
	"html/template"
	"io"

	"github.com/osa030/playbox/internal/domain/playlist"
)

var playerTemplate = template.Must(template.New("player").Parse(playerPage))

// renderPlayer writes the player page for a playlist.
func renderPlayer(w io.Writer, pl *playlist.Playlist) error {
	return playerTemplate.Execute(w, pl)
}

const playerPage = `<!DOCTYPE html>
<html>
<head>
  <title>playbox: {{.Name}}</title>
  <style>
    body { font-family: sans-serif; margin: 0; padding: 20px; }
    .container { display: flex; }
    .playlist { flex: 1; padding-right: 20px; }
    .player { width: 640px; position: sticky; top: 20px; }
    ul { list-style: none; padding-left: 0; }
    li { margin-bottom: 8px; padding: 10px; background: #f5f5f5; border-radius: 5px; cursor: pointer; }
    li.playing { background: #1db954; color: white; }
    #status { margin: 12px 0; padding: 10px; border-radius: 5px; background: #e3f2fd; }
  </style>
</head>
<body>
  <div class="container">
    <div class="playlist">
      <h1>{{.Name}}</h1>
      <ul id="tracks">
        {{range $i, $t := .Tracks}}
        <li data-index="{{$i}}"><b>{{$t.Title}}</b> &mdash; {{$t.ArtistLine}}</li>
        {{end}}
      </ul>
    </div>
    <div class="player">
      <div id="status">Select a song to play...</div>
      <div id="player"></div>
    </div>
  </div>

  <script src="https://www.youtube.com/iframe_api"></script>
  <script>
    let player = null;
    let loadedVideoId = null;
    let lastState = null;

    document.querySelectorAll('#tracks li').forEach(li => {
      li.onclick = () => select(parseInt(li.dataset.index, 10));
    });

    async function select(index) {
      document.querySelectorAll('#tracks li').forEach(li => li.classList.remove('playing'));
      document.querySelector('#tracks li[data-index="' + index + '"]').classList.add('playing');
      await fetch('/api/select', {method: 'POST', headers: {'Content-Type': 'application/json'},
                                  body: JSON.stringify({index: index})});
    }

    function post(path) { return fetch(path, {method: 'POST'}); }

    async function poll() {
      const resp = await fetch('/api/state');
      if (!resp.ok) return;
      const s = await resp.json();

      if (s.state !== lastState) {
        lastState = s.state;
        document.getElementById('status').textContent = statusLine(s);
      }
      if (s.state === 'awaiting_candidate' && s.candidate && s.candidate.videoId !== loadedVideoId) {
        loadedVideoId = s.candidate.videoId;
        loadVideo(s.candidate.videoId);
      }
      if (s.trackIndex >= 0) {
        document.querySelectorAll('#tracks li').forEach(li => {
          li.classList.toggle('playing', parseInt(li.dataset.index, 10) === s.trackIndex);
        });
      }
    }

    function statusLine(s) {
      switch (s.state) {
        case 'resolving': return 'Searching for a playable video...';
        case 'playing': return 'Playing' + (s.candidate ? ': ' + s.candidate.title : '');
        case 'exhausted_candidates': return 'No playable video found for this track.';
        case 'exhausted_playlist': return 'End of playlist.';
        default: return s.state;
      }
    }

    function loadVideo(videoId) {
      if (!player) {
        player = new YT.Player('player', {
          height: '360', width: '640', videoId: videoId,
          playerVars: {autoplay: 1},
          events: {onStateChange: onPlayerStateChange, onError: onPlayerError}
        });
      } else {
        player.loadVideoById(videoId);
      }
    }

    function onPlayerStateChange(event) {
      if (event.data === YT.PlayerState.PLAYING) post('/api/started');
      if (event.data === YT.PlayerState.ENDED) post('/api/ended');
    }

    function onPlayerError() { post('/api/error'); }

    setInterval(poll, 500);
  </script>
</body>
</html>
`
