package remote

import (
	"context"
	"net/http"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
)

// maxMessage bounds a single collection frame.
const maxMessage = 4 << 20

// Watch subscribes to the server's collection feed and calls fn with every
// collection it pushes, starting with the current one. It returns nil when
// ctx is done or the server closes the feed normally.
func (c *Client) Watch(ctx context.Context, fn func([]dashboard.Entry)) error {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/dashboards/watch"

	// Dial rejects clients with a timeout; the context bounds the stream.
	hc := *c.http
	hc.Timeout = 0
	header := http.Header{}
	for k, v := range c.headers {
		header.Set(k, v)
	}

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		HTTPClient: &hc,
		HTTPHeader: header,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", u.Redacted())
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxMessage)
	c.logger.Debug("watching dashboards", "url", u.Redacted())

	for {
		var entries []dashboard.Entry
		if err := wsjson.Read(ctx, conn, &entries); err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return errors.Wrap(errors.ErrCodeNetwork, err, "watch %s", u.Redacted())
		}
		if entries == nil {
			entries = []dashboard.Entry{}
		}
		fn(entries)
	}
}
