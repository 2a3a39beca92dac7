package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-logfmt/logfmt"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one record written by slog's text handler.
type Entry struct {
	Time    string
	Level   string
	Message string
	Attrs   []Attr
	Raw     string
}

// Attr is a key=value pair that followed the message.
type Attr struct {
	Key   string
	Value string
}

// Attr returns the value of the named attribute, or "".
func (e Entry) Attr(key string) string {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// Parse splits a key=value log line. Lines that are not in that form come
// back with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	pairs, ok := splitPairs(line)
	if !ok {
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	for _, p := range pairs {
		switch p.Key {
		case "time":
			entry.Time = p.Value
		case "level":
			entry.Level = strings.ToUpper(p.Value)
		case "msg":
			entry.Message = p.Value
		default:
			entry.Attrs = append(entry.Attrs, p)
		}
	}
	return entry
}

// Compact renders an entry for a narrow pane: clock time, level, message,
// then the attributes worth reading. Session ids are dropped.
func Compact(e Entry) string {
	if e.Level == "" && e.Time == "" {
		return e.Message
	}
	var b strings.Builder
	if clock := clockOf(e.Time); clock != "" {
		b.WriteString(clock)
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", e.Level)
	}
	b.WriteString(e.Message)
	for _, a := range e.Attrs {
		if a.Key == "session" {
			continue
		}
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value)
	}
	return b.String()
}

func clockOf(ts string) string {
	// 2006-01-02T15:04:05.000-07:00
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

// splitPairs reads one logfmt record. slog quotes values with strconv.Quote,
// and the logfmt decoder only accepts JSON escapes, so a record it rejects as
// malformed is rescanned with Go unquoting.
func splitPairs(line string) ([]Attr, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.IndexByte(fields[0], '=') <= 0 {
		return nil, false
	}

	dec := logfmt.NewDecoder(strings.NewReader(line))
	var pairs []Attr
	for dec.ScanRecord() {
		for dec.ScanKeyval() {
			pairs = append(pairs, Attr{Key: string(dec.Key()), Value: string(dec.Value())})
		}
	}
	if dec.Err() != nil {
		return scanQuoted(line)
	}
	return pairs, len(pairs) > 0
}

func scanQuoted(line string) ([]Attr, bool) {
	var pairs []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t\"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, false
			}
			value, err = strconv.Unquote(quoted)
			if err != nil {
				return nil, false
			}
			rest = rest[len(quoted):]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		pairs = append(pairs, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}
