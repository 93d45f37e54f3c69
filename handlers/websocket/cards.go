// Package websocket pushes collection changes to connected clients over socket.io.
package websocket

import (
	"regexp"

	"cardgen-server/core"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

const (
	// EventCardsUpdated carries the full card list after every change.
	EventCardsUpdated = "cards-updated"

	// EventSync asks the server to resend the current cards.
	EventSync = "sync"
)

// CardLister returns the current cards in order.
type CardLister func() []core.Card

// SetupSocketIO builds the socket.io server. Every new connection, and every
// sync request, is answered with the current cards.
func SetupSocketIO(cards CardLister) *socketio.Server {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(1000000)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin:      []any{localhostOrigin},
		Credentials: true,
	})
	srv := socketio.NewServer(nil, opts)

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}
		log := logrus.WithField("socket_id", socket.Id())
		log.Debug("Client connected")

		socket.Emit(EventCardsUpdated, cards())

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On(EventSync, func(...any) {
			socket.Emit(EventCardsUpdated, cards())
		})

		//nolint:errcheck // Socket.IO event handlers do not return useful errors
		socket.On("disconnect", func(reason ...any) {
			log.WithField("reason", reason).Debug("Client disconnected")
		})
	})

	return srv
}

// Broadcaster tells every connected client about collection changes.
type Broadcaster struct {
	srv *socketio.Server
}

func NewBroadcaster(srv *socketio.Server) *Broadcaster {
	return &Broadcaster{srv: srv}
}

func (b *Broadcaster) CardsChanged(cards []core.Card) {
	if cards == nil {
		cards = []core.Card{}
	}
	b.srv.Emit(EventCardsUpdated, cards)
	logrus.WithField("card_count", len(cards)).Debug("Broadcast cards")
}
