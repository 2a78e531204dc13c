package todo

import (
	"encoding/json"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/vinayprograms/todokit/errors"
)

// Encode serializes list as an indented JSON array. Each element carries
// exactly id, text, done and createdAt. A nil list encodes as [].
func Encode(list List) ([]byte, error) {
	if list == nil {
		list = List{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode task list")
	}
	return data, nil
}

// Decode parses a stored payload. It returns the valid records in order and
// the number of elements it dropped. A record is dropped when it lacks the
// four-field shape, repeats one of the four keys, carries invalid UTF-8 in
// id or text, or reuses an earlier record's id. A payload that is not a JSON
// array decodes to an empty list with nothing counted as dropped.
func Decode(data []byte) (List, int) {
	list, dropped, _ := decode(data)
	return list, dropped
}

// decode is Decode plus the reason the whole payload was rejected, if it was.
func decode(data []byte) (List, int, error) {
	if !gjson.ValidBytes(data) {
		return List{}, 0, errors.New(errors.ErrCodeCorruption, "payload is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return List{}, 0, errors.New(errors.ErrCodeCorruption, "payload is not a JSON array")
	}

	list := List{}
	dropped := 0
	seen := make(map[string]struct{})
	root.ForEach(func(_, value gjson.Result) bool {
		t, ok := decodeTask(value)
		if !ok {
			dropped++
			return true
		}
		if _, dup := seen[t.ID]; dup {
			dropped++
			return true
		}
		seen[t.ID] = struct{}{}
		list = append(list, t)
		return true
	})
	return list, dropped, nil
}

// recordFields are the keys decodeTask reads.
var recordFields = map[string]struct{}{
	"id": {}, "text": {}, "done": {}, "createdAt": {},
}

// decodeTask accepts an object whose id and text are valid UTF-8 strings,
// done is a boolean and createdAt is an integral number. An object that
// repeats one of these keys is rejected. Other fields are ignored.
func decodeTask(v gjson.Result) (Task, bool) {
	if !v.IsObject() || repeatsField(v) {
		return Task{}, false
	}
	id := v.Get("id")
	text := v.Get("text")
	done := v.Get("done")
	created := v.Get("createdAt")

	if id.Type != gjson.String || text.Type != gjson.String || !done.IsBool() {
		return Task{}, false
	}
	if !utf8.ValidString(id.String()) || !utf8.ValidString(text.String()) {
		return Task{}, false
	}
	ms, ok := integral(created)
	if !ok {
		return Task{}, false
	}
	return Task{
		ID:        id.String(),
		Text:      text.String(),
		Done:      done.Bool(),
		CreatedAt: ms,
	}, true
}

func repeatsField(v gjson.Result) bool {
	seen := make(map[string]struct{}, len(recordFields))
	repeated := false
	v.ForEach(func(k, _ gjson.Result) bool {
		name := k.String()
		if _, ok := recordFields[name]; !ok {
			return true
		}
		if _, dup := seen[name]; dup {
			repeated = true
			return false
		}
		seen[name] = struct{}{}
		return true
	})
	return repeated
}

// integral reads a JSON number that has no fractional part, such as 17 or
// 1.7e1, as an int64.
func integral(v gjson.Result) (int64, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
		return n, true
	}
	f := v.Num
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
