package normalize

import (
	"fmt"
	"math/rand/v2"

	"cardgen-server/core"
)

// Shape classifies a parsed response value.
type Shape int

const (
	ShapeNotStructured Shape = iota
	ShapeList                // array; each element is classified with ClassifyItem
	ShapeWrappedCards        // object whose cards/flashcards/wrapper field is an array
	ShapeKeyValueMap         // any other object; one card per key
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeWrappedCards:
		return "wrapped-cards"
	case ShapeKeyValueMap:
		return "key-value-map"
	default:
		return "not-structured"
	}
}

// ItemShape classifies one element of a list response.
type ItemShape int

const (
	ItemUnknown        ItemShape = iota
	ItemTitleContent             // title, content or description present
	ItemTermDefinition           // word, term or question present
	ItemSingleKey                // exactly one key; key is the title
)

func (s ItemShape) String() string {
	switch s {
	case ItemTitleContent:
		return "title-content"
	case ItemTermDefinition:
		return "term-definition"
	case ItemSingleKey:
		return "single-key"
	default:
		return "unknown"
	}
}

var (
	wrapperFields    = []string{"cards", "flashcards", "wrapper"}
	titleFields      = []string{"title"}
	bodyFields       = []string{"content", "description"}
	termFields       = []string{"word", "term", "question"}
	definitionFields = []string{"definition", "description", "answer", "info"}
)

// Classify picks the shaping rule for a parsed top-level value.
func Classify(v any) Shape {
	switch t := v.(type) {
	case []any:
		return ShapeList
	case *object:
		if _, ok := wrappedList(t); ok {
			return ShapeWrappedCards
		}
		return ShapeKeyValueMap
	}
	return ShapeNotStructured
}

// ClassifyItem picks the mapping rule for one list element. Rules are tried in
// priority order, so an element carrying both title and term maps as title-content.
func ClassifyItem(v any) ItemShape {
	obj, ok := v.(*object)
	if !ok {
		return ItemUnknown
	}
	switch {
	case hasAny(obj, titleFields) || hasAny(obj, bodyFields):
		return ItemTitleContent
	case hasAny(obj, termFields):
		return ItemTermDefinition
	case obj.len() == 1:
		return ItemSingleKey
	}
	return ItemUnknown
}

// shape turns a parsed value into drafts. The bool result is false when the value
// is not something cards can be built from.
func shape(v any) ([]core.Draft, bool) {
	switch Classify(v) {
	case ShapeList:
		return shapeList(v.([]any)), true
	case ShapeWrappedCards:
		list, _ := wrappedList(v.(*object))
		return shapeList(list), true
	case ShapeKeyValueMap:
		return shapeMap(v.(*object)), true
	}
	return nil, false
}

func shapeList(list []any) []core.Draft {
	drafts := make([]core.Draft, 0, len(list))
	for _, item := range list {
		switch ClassifyItem(item) {
		case ItemTitleContent:
			obj := item.(*object)
			title := firstText(obj, titleFields)
			if title == "" {
				title = placeholderTitle()
			}
			drafts = append(drafts, core.Draft{
				Title:   title,
				Content: firstText(obj, bodyFields),
			})
		case ItemTermDefinition:
			obj := item.(*object)
			title := firstText(obj, termFields)
			if title == "" {
				title = placeholderTitle()
			}
			drafts = append(drafts, core.Draft{
				Title:   title,
				Content: firstText(obj, definitionFields),
			})
		case ItemSingleKey:
			obj := item.(*object)
			key := obj.keys[0]
			drafts = append(drafts, core.Draft{
				Title:   key,
				Content: text(obj.values[key]),
			})
		}
	}
	return drafts
}

func shapeMap(obj *object) []core.Draft {
	drafts := make([]core.Draft, 0, obj.len())
	for _, key := range obj.keys {
		drafts = append(drafts, core.Draft{
			Title:   key,
			Content: text(obj.values[key]),
		})
	}
	return drafts
}

func wrappedList(obj *object) ([]any, bool) {
	for _, field := range wrapperFields {
		if v, ok := obj.get(field); ok {
			if list, ok := v.([]any); ok {
				return list, true
			}
		}
	}
	return nil, false
}

// hasAny reports whether any of fields is present with a non-null value.
func hasAny(obj *object, fields []string) bool {
	for _, field := range fields {
		if v, ok := obj.get(field); ok && v != nil {
			return true
		}
	}
	return false
}

// firstText returns the text of the first field that renders non-empty.
func firstText(obj *object, fields []string) string {
	for _, field := range fields {
		if v, ok := obj.get(field); ok {
			if s := text(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func placeholderTitle() string {
	return fmt.Sprintf("Card %d", rand.IntN(1000))
}
