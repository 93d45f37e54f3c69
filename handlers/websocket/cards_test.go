package websocket

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardgen-server/core"
)

func TestSetupSocketIO_Handshake(t *testing.T) {
	srv := SetupSocketIO(func() []core.Card { return nil })
	defer srv.Close(nil)

	ts := httptest.NewServer(srv.ServeHandler(nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/socket.io/?EIO=4&transport=polling")
	if err != nil {
		t.Fatalf("handshake request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status code mismatch: got %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "0{") || !strings.Contains(string(body), `"sid"`) {
		t.Errorf("Expected engine.io open packet, got %q", body)
	}
}

func TestBroadcaster_NoClients(t *testing.T) {
	srv := SetupSocketIO(func() []core.Card { return nil })
	defer srv.Close(nil)

	b := NewBroadcaster(srv)
	b.CardsChanged(nil)
	b.CardsChanged([]core.Card{{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", Title: "T", Content: "C"}})
}
