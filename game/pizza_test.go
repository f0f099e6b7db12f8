package game

import (
	"encoding/json"
	"testing"
)

func TestIngredientSetOrderIndependent(t *testing.T) {
	a := IngredientSet(0).With(Tomato).With(Cheese)
	b := IngredientSet(0).With(Cheese).With(Tomato)
	if a != b {
		t.Fatalf("%s != %s", a, b)
	}
	order := SetOf(Cheese, Tomato)
	if (Pizza{Ingredients: a, State: PizzaCooked}).Matches(order) == false {
		t.Fatalf("cooked %s should match order %s", a, order)
	}
}

func TestIngredientSetInsertIdempotent(t *testing.T) {
	s := SetOf(Cheese)
	if s.With(Cheese) != s || s.With(Cheese).Len() != 1 {
		t.Fatalf("re-inserting must not change the set")
	}
	if s.Toggle(Cheese) != 0 || s.Toggle(Tomato) != SetOf(Cheese, Tomato) {
		t.Fatalf("toggle misbehaves")
	}
}

func TestPizzaMatchRequiresCookedAndExactSet(t *testing.T) {
	order := SetOf(Cheese)
	cases := []struct {
		name  string
		pizza Pizza
		want  bool
	}{
		{"raw", Pizza{Ingredients: order, State: PizzaRaw}, false},
		{"cooked", Pizza{Ingredients: order, State: PizzaCooked}, true},
		{"plated", Pizza{Ingredients: order, State: PizzaPlated}, true},
		{"superset", Pizza{Ingredients: SetOf(Cheese, Tomato), State: PizzaCooked}, false},
		{"empty", Pizza{State: PizzaCooked}, false},
	}
	for _, c := range cases {
		if got := c.pizza.Matches(order); got != c.want {
			t.Errorf("%s: Matches = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIngredientSetJSON(t *testing.T) {
	b, err := json.Marshal(SetOf(Tomato, Cheese))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["cheese","tomato"]` {
		t.Fatalf("json = %s", b)
	}
	var s IngredientSet
	if err := json.Unmarshal([]byte(`["tomato","cheese","tomato"]`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s != SetOf(Cheese, Tomato) {
		t.Fatalf("decoded %s", s)
	}
	if err := json.Unmarshal([]byte(`["anchovy"]`), &s); err == nil {
		t.Fatalf("expected error for unknown ingredient")
	}
}
