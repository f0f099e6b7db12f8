package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Ingredient 配料种类
type Ingredient uint8

const (
	Cheese Ingredient = iota
	Tomato
	Cucumber
	Pepperoni
	ingredientCount
)

var ingredientNames = [...]string{"cheese", "tomato", "cucumber", "pepperoni"}

// Ingredients 返回全部配料（固定顺序）
func Ingredients() []Ingredient {
	out := make([]Ingredient, 0, ingredientCount)
	for i := Ingredient(0); i < ingredientCount; i++ {
		out = append(out, i)
	}
	return out
}

func (i Ingredient) String() string {
	if i < ingredientCount {
		return ingredientNames[i]
	}
	return fmt.Sprintf("ingredient(%d)", uint8(i))
}

func ParseIngredient(s string) (Ingredient, error) {
	for i, name := range ingredientNames {
		if strings.EqualFold(s, name) {
			return Ingredient(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ingredient %q", s)
}

// IngredientSet 配料集合（位图），天然无序且无重复，== 即集合相等
type IngredientSet uint8

func SetOf(items ...Ingredient) IngredientSet {
	var s IngredientSet
	for _, i := range items {
		s = s.With(i)
	}
	return s
}

func (s IngredientSet) With(i Ingredient) IngredientSet    { return s | 1<<i }
func (s IngredientSet) Without(i Ingredient) IngredientSet { return s &^ (1 << i) }
func (s IngredientSet) Has(i Ingredient) bool              { return s&(1<<i) != 0 }
func (s IngredientSet) Empty() bool                        { return s == 0 }

// Toggle 有则删、无则加（点单按钮）
func (s IngredientSet) Toggle(i Ingredient) IngredientSet {
	if s.Has(i) {
		return s.Without(i)
	}
	return s.With(i)
}

func (s IngredientSet) Len() int {
	n := 0
	for i := Ingredient(0); i < ingredientCount; i++ {
		if s.Has(i) {
			n++
		}
	}
	return n
}

// Items 按固定顺序列出集合元素
func (s IngredientSet) Items() []Ingredient {
	out := make([]Ingredient, 0, ingredientCount)
	for i := Ingredient(0); i < ingredientCount; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (s IngredientSet) String() string {
	names := make([]string, 0, ingredientCount)
	for _, i := range s.Items() {
		names = append(names, i.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MarshalJSON 以名称数组输出，便于调试与 schema 校验
func (s IngredientSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, ingredientCount)
	for _, i := range s.Items() {
		names = append(names, i.String())
	}
	return json.Marshal(names)
}

func (s *IngredientSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out IngredientSet
	for _, name := range names {
		i, err := ParseIngredient(name)
		if err != nil {
			return err
		}
		out = out.With(i)
	}
	*s = out
	return nil
}

// PizzaState 披萨状态，只能单向推进：Raw → Cooked → Plated
type PizzaState uint8

const (
	PizzaRaw PizzaState = iota
	PizzaCooked
	PizzaPlated
)

func (s PizzaState) String() string {
	switch s {
	case PizzaRaw:
		return "raw"
	case PizzaCooked:
		return "cooked"
	case PizzaPlated:
		return "plated"
	default:
		return fmt.Sprintf("pizza_state(%d)", uint8(s))
	}
}

// Pizza 玩家手上的披萨
type Pizza struct {
	Ingredients IngredientSet `json:"ingredients"`
	State       PizzaState    `json:"state"`
}

// Deliverable 烤好（或已装盘）的披萨才能上桌
func (p Pizza) Deliverable() bool { return p.State >= PizzaCooked }

// Matches 订单匹配：集合严格相等
func (p Pizza) Matches(order IngredientSet) bool {
	return p.Deliverable() && p.Ingredients == order
}
