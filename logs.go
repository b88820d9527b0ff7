package rxkit

import (
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

//***************************************************************************
// Logs
//***************************************************************************

// Level defines different level warnings for giving
// log events.
type Level uint8

// constants of log levels this package respect.
// They are capitalize to ensure no naming conflict.
const (
	INFO Level = 1 << iota
	DEBUG
	WARN
	ERROR
	PANIC
)

// String implements the Stringer interface.
func (l Level) String() string {
	switch l {
	case INFO:
		return "INFO"
	case ERROR:
		return "ERROR"
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case PANIC:
		return "PANIC"
	}
	return "UNKNOWN"
}

// LogMessage defines an interface which exposes a method for retrieving
// log details for giving log item.
type LogMessage interface {
	Message() string
}

// Message implements the LogMessage interface for a plain string.
type Message string

// Message returns the string itself.
func (m Message) Message() string {
	return string(m)
}

// Logs defines a acceptable logging interface which all elements and sub packages
// will respect and use to deliver logs for different parts and ops, this frees
// this package from specifying or locking a giving implementation and contaminating
// import paths. Implement this and pass in to elements that provide for it.
type Logs interface {
	Emit(Level, LogMessage)
}

// DrainLog implements the Logs interface.
type DrainLog struct{}

// Emit does nothing with provided arguments, it implements
// Logs Emit method.
func (DrainLog) Emit(_ Level, _ LogMessage) {}

//***************************************************************************
// LogEvent
//***************************************************************************

var (
	comma        = []byte(",")
	colon        = []byte(":")
	space        = []byte(" ")
	openBlock    = []byte("{")
	closingBlock = []byte("}")
	doubleQuote  = []byte("\"")
	logEventPool = sync.Pool{
		New: func() interface{} {
			return &LogEvent{content: make([]byte, 0, 218), r: 1}
		},
	}
)

// LogMsg requests allocation for a *LogEvent from the internal pool returning a *LogEvent for use
// which must be have it's Write() or Message() method called once done.
func LogMsg(message string, inherits ...func(event *LogEvent)) *LogEvent {
	event := logEventPool.Get().(*LogEvent)
	event.reset()
	event.addQuotedString("message", message)
	event.endEntry()

	for _, op := range inherits {
		op(event)
	}
	return event
}

// LogEvent builds a flat json object from a message and key-value pairs.
//
// Each *LogEvent is retrieved from a pool and will panic if used after
// Message or Write was called.
type LogEvent struct {
	r       uint32
	content []byte
}

// String adds a field name with string value.
func (l *LogEvent) String(name string, value string) *LogEvent {
	l.addQuotedString(name, value)
	l.endEntry()
	return l
}

// Err adds a field name with the plain message of err, or null if err is nil.
func (l *LogEvent) Err(name string, err error) *LogEvent {
	if err == nil {
		l.addBytes(name, []byte("null"))
		l.endEntry()
		return l
	}
	return l.String(name, ErrorMessage(err))
}

// Bytes adds a field name with bytes value. The byte is expected to be
// valid JSON, no checks are made to ensure this.
func (l *LogEvent) Bytes(name string, value []byte) *LogEvent {
	l.addBytes(name, value)
	l.endEntry()
	return l
}

// With applies giving function to the log event object.
func (l *LogEvent) With(handler func(event *LogEvent)) *LogEvent {
	handler(l)
	return l
}

// Object adds a field name with object value.
func (l *LogEvent) Object(name string, handler func(event *LogEvent)) *LogEvent {
	newEvent := logEventPool.Get().(*LogEvent)
	newEvent.reset()

	handler(newEvent)
	newEvent.trimEntry()
	newEvent.end()

	l.addBytes(name, newEvent.content)
	l.endEntry()

	newEvent.resetContent()
	newEvent.release()
	return l
}

// ObjectJSON adds a field name with the json encoding of value. Values
// which fail to encode are recorded as their error message.
func (l *LogEvent) ObjectJSON(name string, value interface{}) *LogEvent {
	data, err := json.Marshal(value)
	if err != nil {
		return l.String(name, err.Error())
	}

	l.addBytes(name, data)
	l.endEntry()
	return l
}

// Bool adds a field name with bool value.
func (l *LogEvent) Bool(name string, value bool) *LogEvent {
	l.addBytes(name, strconv.AppendBool(nil, value))
	l.endEntry()
	return l
}

// Int adds a field name with int value.
func (l *LogEvent) Int(name string, value int) *LogEvent {
	l.addBytes(name, strconv.AppendInt(nil, int64(value), 10))
	l.endEntry()
	return l
}

// Int64 adds a field name with int64 value.
func (l *LogEvent) Int64(name string, value int64) *LogEvent {
	l.addBytes(name, strconv.AppendInt(nil, value, 10))
	l.endEntry()
	return l
}

// Time adds a field name with the RFC3339 formatted time value.
func (l *LogEvent) Time(name string, value time.Time) *LogEvent {
	l.addQuotedString(name, value.Format(time.RFC3339Nano))
	l.endEntry()
	return l
}

// Float64 adds a field name with float64 value.
func (l *LogEvent) Float64(name string, value float64) *LogEvent {
	l.addBytes(name, strconv.AppendFloat(nil, value, 'g', -1, 64))
	l.endEntry()
	return l
}

// Message returns the generated JSON of giving *LogEvent and releases it.
func (l *LogEvent) Message() string {
	if l.released() {
		panic("Re-using released *LogEvent")
	}

	l.trimEntry()
	l.end()

	content := string(l.content)
	l.resetContent()
	l.release()
	return content
}

// Write delivers giving log event as a generated message.
func (l *LogEvent) Write(ll Level, lg Logs) {
	lg.Emit(ll, Message(l.Message()))
}

func (l *LogEvent) reset() {
	atomic.StoreUint32(&l.r, 1)
	l.content = append(l.content[:0], openBlock...)
}

// trimEntry removes the separator left by the last entry.
func (l *LogEvent) trimEntry() {
	total := len(comma) + len(space)
	rem := len(l.content) - total
	if rem < len(openBlock) {
		rem = len(openBlock)
	}
	l.content = l.content[:rem]
}

func (l *LogEvent) resetContent() {
	l.content = l.content[:0]
}

func (l *LogEvent) released() bool {
	return atomic.LoadUint32(&l.r) == 0
}

func (l *LogEvent) release() {
	atomic.StoreUint32(&l.r, 0)
	logEventPool.Put(l)
}

func (l *LogEvent) addQuotedString(k string, v string) {
	quoted, err := json.Marshal(v)
	if err != nil {
		quoted = []byte(strconv.Quote(v))
	}
	l.addBytes(k, quoted)
}

func (l *LogEvent) addBytes(k string, v []byte) {
	if l.released() {
		panic("Re-using released *LogEvent")
	}

	l.content = append(l.content, doubleQuote...)
	l.content = append(l.content, k...)
	l.content = append(l.content, doubleQuote...)
	l.content = append(l.content, colon...)
	l.content = append(l.content, space...)
	l.content = append(l.content, v...)
}

func (l *LogEvent) endEntry() {
	l.content = append(l.content, comma...)
	l.content = append(l.content, space...)
}

func (l *LogEvent) end() {
	l.content = append(l.content, closingBlock...)
}
