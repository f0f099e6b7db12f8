package protocol

import (
	"errors"
	"testing"

	"pizzaroyal/game"
)

func sampleWelcome(t *testing.T) game.Welcome {
	t.Helper()
	m := game.New(game.DefaultTuning())
	m.SpawnPlayer("alice")
	order := game.SetOf(game.Cheese, game.Tomato)
	m.ApplyEvent(game.Order(3, &order))
	w, _ := m.Welcome("bob")
	return w
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"", "json", "JSON", " msgpack "} {
		if _, err := CodecByName(name); err != nil {
			t.Fatalf("CodecByName(%q): %v", name, err)
		}
	}
	if _, err := CodecByName("xml"); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("expected ErrUnknownCodec, got %v", err)
	}
}

func TestWelcomeSurvivesBothCodecs(t *testing.T) {
	w := sampleWelcome(t)
	for _, c := range []Codec{JSON, MsgPack} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(WelcomeMessage(w))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			msg, err := DecodeServer(c, b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Type != TypeWelcome || msg.Welcome == nil {
				t.Fatalf("unexpected message %+v", msg)
			}
			got := msg.Welcome.Model
			if msg.Welcome.PlayerID != w.PlayerID || got.IDGen != w.Model.IDGen {
				t.Fatalf("ids differ: %d/%v vs %d/%v", msg.Welcome.PlayerID, got.IDGen, w.PlayerID, w.Model.IDGen)
			}
			if len(got.Players) != 2 {
				t.Fatalf("players = %d, want 2", len(got.Players))
			}
			p := got.Players[w.PlayerID]
			if p == nil || p.Name != "bob" || p.UnemployedTime == nil || p.Seat != nil || p.Pizza != nil {
				t.Fatalf("player did not survive: %+v", p)
			}
			if got.Seats[3].Order == nil || *got.Seats[3].Order != game.SetOf(game.Cheese, game.Tomato) {
				t.Fatalf("seat order lost: %v", got.Seats[3].Order)
			}
			if got.Seats[0].Order != nil {
				t.Fatalf("empty seat gained an order")
			}
			if len(got.Nav.Nodes) != len(w.Model.Nav.Nodes) || got.Boss != w.Model.Boss {
				t.Fatalf("static world differs after decode")
			}
		})
	}
}

func TestEventBatchSurvivesBothCodecs(t *testing.T) {
	p := &game.Player{ID: 4, Seat: new(int), Pizza: &game.Pizza{Ingredients: game.SetOf(game.Pepperoni), State: game.PizzaCooked}}
	*p.Seat = 2
	order := game.SetOf(game.Cucumber)
	events := []game.Event{
		game.PlayerUpdated(p),
		game.Order(0, &order),
		game.Order(5, nil),
		game.Hire(4),
		game.Interacted(6),
		game.BossUpdate(game.Boss{Target: game.FireTarget(4), Timer: 12.5}),
	}
	for _, c := range []Codec{JSON, MsgPack} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(EventsMessage(events))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			msg, err := DecodeServer(c, b)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(msg.Events) != len(events) {
				t.Fatalf("events = %d, want %d", len(msg.Events), len(events))
			}
			if got := msg.Events[0].Player; *got.Seat != 2 || got.Pizza.Ingredients != game.SetOf(game.Pepperoni) {
				t.Fatalf("player event lost data: %+v", got)
			}
			if o := msg.Events[1].Order; o == nil || *o != order || msg.Events[1].Seat != 0 {
				t.Fatalf("order event = %v", msg.Events[1])
			}
			if msg.Events[2].Order != nil || msg.Events[2].Seat != 5 {
				t.Fatalf("clear event = %v", msg.Events[2])
			}
			if msg.Events[3] != game.Hire(4) || msg.Events[4] != game.Interacted(6) {
				t.Fatalf("simple events differ: %v", msg.Events[3:5])
			}
			if *msg.Events[5].Boss != *events[5].Boss {
				t.Fatalf("boss = %+v", msg.Events[5].Boss)
			}
		})
	}
}

func TestDecodeClient(t *testing.T) {
	if _, err := DecodeClient(JSON, nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := DecodeClient(JSON, []byte(`{"type":"event"}`)); err == nil {
		t.Fatalf("event message without event must fail")
	}
	if _, err := DecodeClient(JSON, []byte(`{not json`)); err == nil {
		t.Fatalf("garbage must fail")
	}
	b, _ := MsgPack.Marshal(EventMessage(game.Fire(9)))
	msg, err := DecodeClient(MsgPack, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Game().Event == nil || *msg.Game().Event != game.Fire(9) {
		t.Fatalf("decoded %+v", msg)
	}
}
