package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"monopod-agents/pkg/errx"
)

// FieldKind 補完出力の各キーに期待するJSONの型
type FieldKind int

const (
	FieldInteger FieldKind = iota
	FieldBoolean
	FieldString
	FieldStringArray
	FieldEnum
)

func (k FieldKind) String() string {
	switch k {
	case FieldInteger:
		return "integer"
	case FieldBoolean:
		return "boolean"
	case FieldString:
		return "string"
	case FieldStringArray:
		return "array of strings"
	case FieldEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// FieldSpec は必須キー1つ分の定義です。EnumはKindがFieldEnumのときの許容値（正規形）です。
type FieldSpec struct {
	Name string
	Kind FieldKind
	Enum []string
}

// Schema 補完出力に必須のキー一覧
type Schema []FieldSpec

// SchemaError は補完出力が期待するスキーマと一致しない場合の詳細です。
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "schema mismatch: " + strings.Join(e.Problems, "; ")
}

// ErrNotJSONObject は補完出力がJSONオブジェクトとして解析できない場合のエラーです。
var ErrNotJSONObject = errors.New("completion output is not a JSON object")

// DecodeStructured は補完の生テキストをJSONオブジェクトとして解析し、schemaで検証してからoutへ格納します。
// 欠落・型不一致のキーはすべて1つのParseErrorにまとめて返し、デフォルト値で埋めることはしません。
func DecodeStructured(raw string, schema Schema, out any) error {
	text := stripCodeFence(strings.TrimSpace(raw))

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		if err == nil {
			return errx.Parse(ErrNotJSONObject)
		}
		return errx.Parse(fmt.Errorf("%w: %v", ErrNotJSONObject, err))
	}
	if dec.More() {
		return errx.Parse(fmt.Errorf("%w: trailing data after object", ErrNotJSONObject))
	}

	var problems []string
	for _, field := range schema {
		value, ok := obj[field.Name]
		if !ok {
			problems = append(problems, "missing key: "+field.Name)
			continue
		}
		normalized, err := checkField(field, value)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		obj[field.Name] = normalized
	}
	if len(problems) > 0 {
		return errx.Parse(&SchemaError{Problems: problems})
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return errx.Parse(err)
	}
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return errx.Parse(err)
	}
	return nil
}

func checkField(field FieldSpec, value any) (any, error) {
	mismatch := func() error {
		return fmt.Errorf("key %s must be %s, got %s", field.Name, field.Kind, jsonTypeName(value))
	}

	switch field.Kind {
	case FieldInteger:
		n, ok := value.(json.Number)
		if !ok {
			return nil, mismatch()
		}
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, fmt.Errorf("key %s must be integer, got %s", field.Name, n.String())
		}
		return int64(f), nil

	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return nil, mismatch()
		}
		return value, nil

	case FieldString:
		if _, ok := value.(string); !ok {
			return nil, mismatch()
		}
		return value, nil

	case FieldStringArray:
		items, ok := value.([]any)
		if !ok {
			return nil, mismatch()
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				return nil, fmt.Errorf("key %s[%d] must be string, got %s", field.Name, i, jsonTypeName(item))
			}
		}
		return value, nil

	case FieldEnum:
		s, ok := value.(string)
		if !ok {
			return nil, mismatch()
		}
		for _, allowed := range field.Enum {
			if strings.EqualFold(strings.TrimSpace(s), allowed) {
				return allowed, nil
			}
		}
		return nil, fmt.Errorf("key %s must be one of %s, got %s", field.Name, strings.Join(field.Enum, "|"), strconv.Quote(s))
	}
	return nil, fmt.Errorf("key %s has unsupported kind", field.Name)
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// stripCodeFence は ```json ... ``` で囲まれた出力から中身だけを取り出します。
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		return text
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}
