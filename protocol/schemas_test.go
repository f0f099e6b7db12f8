package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"pizzaroyal/game"
	"pizzaroyal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile(filepath.Join("schemas", name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validateEncoded(t *testing.T, s *jsonschema.Schema, msg any) {
	t.Helper()
	b, err := protocol.JSON.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(doc); err != nil {
		t.Fatalf("validate %s: %v", b, err)
	}
}

func TestSchemas_ValidateEncodedMessages(t *testing.T) {
	server := compileSchema(t, "server_message.schema.json")
	client := compileSchema(t, "client_message.schema.json")

	m := game.New(game.DefaultTuning())
	m.SpawnPlayer("alice")
	w, joined := m.Welcome("bob")
	validateEncoded(t, server, protocol.WelcomeMessage(w))

	events := append([]game.Event{}, joined...)
	events = append(events, m.Tick()...)
	order := game.SetOf(game.Tomato)
	events = append(events, game.Order(1, &order), game.Order(1, nil), game.Fire(w.PlayerID), game.Interacted(2))
	validateEncoded(t, server, protocol.EventsMessage(events))

	p := m.Players[w.PlayerID].Clone()
	p.Pizza = &game.Pizza{Ingredients: game.SetOf(game.Cheese), State: game.PizzaPlated}
	validateEncoded(t, client, protocol.EventMessage(game.PlayerUpdated(p)))
	validateEncoded(t, client, protocol.EventMessage(game.PlayerLeft(w.PlayerID)))
}

func TestSchemas_RejectMalformed(t *testing.T) {
	client := compileSchema(t, "client_message.schema.json")
	bad := []string{
		`{"type":"event"}`,
		`{"type":"event","event":{"type":"explode"}}`,
		`{"type":"event","event":{"type":"order","seat":1,"order":["anchovy"]}}`,
		`{"type":"move","event":{"type":"reset"}}`,
	}
	for _, raw := range bad {
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			t.Fatalf("bad fixture %s: %v", raw, err)
		}
		if err := client.Validate(doc); err == nil {
			t.Errorf("expected %s to be rejected", raw)
		}
	}
}
