package template

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"
)

// TableNamer lets a record type choose its table name. Without it the
// snake_case form of the type name is used.
type TableNamer interface {
	TableName() string
}

type column struct {
	name  string
	index []int
	auto  bool
}

// metadata is the reflected shape of a record type.
type metadata struct {
	table   string
	columns []column
	byName  map[string]column
}

// metaCache holds reflected metadata per record type. Reflection runs once
// per type; the cache is safe for concurrent use.
var metaCache = struct {
	mu    sync.RWMutex
	items map[reflect.Type]*metadata
}{items: make(map[reflect.Type]*metadata)}

var (
	timeType       = reflect.TypeOf(time.Time{})
	tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()
)

func metadataFor(t reflect.Type) (*metadata, error) {
	metaCache.mu.RLock()
	m, ok := metaCache.items[t]
	metaCache.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := reflectMetadata(t)
	if err != nil {
		return nil, err
	}

	metaCache.mu.Lock()
	metaCache.items[t] = m
	metaCache.mu.Unlock()
	return m, nil
}

func reflectMetadata(t reflect.Type) (*metadata, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}

	m := &metadata{
		table:  tableName(t),
		byName: make(map[string]column),
	}
	collectColumns(t, nil, m)
	if len(m.columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, t.Name())
	}
	return m, nil
}

// collectColumns walks exported fields, descending into embedded structs.
// A column name that appears twice keeps its first (shallowest) field.
func collectColumns(t reflect.Type, parent []int, m *metadata) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		index := append(append([]int(nil), parent...), i)

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct && f.Type != timeType {
			collectColumns(f.Type, index, m)
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = snakeCase(f.Name)
		}
		if _, dup := m.byName[name]; dup {
			continue
		}
		col := column{name: name, index: index, auto: hasOption(opts, "auto")}
		m.columns = append(m.columns, col)
		m.byName[name] = col
	}
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if strings.TrimSpace(o) == want {
			return true
		}
	}
	return false
}

func tableName(t reflect.Type) string {
	if t.Implements(tableNamerType) {
		return reflect.Zero(t).Interface().(TableNamer).TableName()
	}
	if reflect.PointerTo(t).Implements(tableNamerType) {
		return reflect.New(t).Interface().(TableNamer).TableName()
	}
	return snakeCase(t.Name())
}

// snakeCase converts CamelCase to snake_case, keeping acronyms together:
// "UserID" becomes "user_id", "HTTPServer" becomes "http_server".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
