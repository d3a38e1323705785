// Package reproducible implements methods for producing build timestamps and identifiers
// that honor SOURCE_DATE_EPOCH, so that two builds from identical source are byte-identical.
//
// Tools that write disk images, archives or object files usually embed the time they were
// built, and often a random volume or partition ID. Both make output differ from one run to
// the next. If the environment variable SOURCE_DATE_EPOCH holds a number of seconds since the
// Unix epoch, the methods here substitute that value for the wall clock, and derive IDs from it.
//
// Some examples:
//
// 1. Get the time to stamp into an image header.
//
//     import reproducible "github.com/diskfs/go-reproducible"
//
//     created := reproducible.Now()
//
// 2. Resolve a timestamp that is written into a 32-bit field, such as a squashfs or ext2 mtime.
//    An override larger than the field can hold is clamped to 2147483647.
//
//     r := reproducible.New(reproducible.WithWidth(timestamp.Width32))
//     mtime := uint32(r.Resolve(time.Now().Unix()))
//
// 3. Get a volume UUID that is stable across builds when SOURCE_DATE_EPOCH is set.
//
//     volumeID := reproducible.UUID("rootfs")
//
package reproducible

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/diskfs/go-reproducible/util/timestamp"
)

// uuidNamespace the namespace for UUIDs derived from the epoch
var uuidNamespace = uuid.MustParse("8d3c6b43-5c9e-4d2a-9a47-2f1c0e6b7d51")

// Resolver resolves timestamps against SOURCE_DATE_EPOCH. A Resolver is not changed after
// New returns it, so it may be used from multiple goroutines.
type Resolver struct {
	width  timestamp.Width
	lookup timestamp.LookupFunc
	logger log.FieldLogger
}

// Option configures a Resolver
type Option func(r *Resolver)

// WithWidth sets the width of the field resolved timestamps are written to.
// An unsupported width is ignored. The default is timestamp.NativeWidth.
func WithWidth(w timestamp.Width) Option {
	return func(r *Resolver) {
		if w.Valid() {
			r.width = w
		}
	}
}

// WithLookup replaces os.LookupEnv as the source of SOURCE_DATE_EPOCH
func WithLookup(lookup timestamp.LookupFunc) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.lookup = lookup
		}
	}
}

// WithLogger sets the logger; the default is the logrus standard logger
func WithLogger(logger log.FieldLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New create a Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		width:  timestamp.NativeWidth,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Width the width resolved timestamps are clamped to
func (r *Resolver) Width() timestamp.Width {
	return r.width
}

// Epoch returns the SOURCE_DATE_EPOCH override and whether it is set.
func (r *Resolver) Epoch() (int64, bool) {
	return timestamp.Override(r.lookup, r.width)
}

// Resolve returns candidate unchanged when SOURCE_DATE_EPOCH is unset or empty, and the
// override otherwise. The override is parsed at the Resolver's width; text that is not a
// number parses as its numeric prefix, or 0, and a value out of range is clamped.
func (r *Resolver) Resolve(candidate int64) int64 {
	v, _ := r.resolve(candidate)
	return v
}

func (r *Resolver) resolve(candidate int64) (int64, bool) {
	v, ok := r.Epoch()
	if !ok {
		return candidate, false
	}
	r.logger.WithFields(log.Fields{
		"candidate": candidate,
		"epoch":     v,
		"width":     r.width.String(),
	}).Debug("using " + timestamp.SourceDateEpochEnv)
	return v, true
}

// Time is Resolve for a time.Time. Without an override t is returned as is, otherwise the
// override in UTC.
func (r *Resolver) Time(t time.Time) time.Time {
	v, ok := r.resolve(t.Unix())
	if !ok {
		return t
	}
	return time.Unix(v, 0).UTC()
}

// Now the current time in UTC, or the override
func (r *Resolver) Now() time.Time {
	return r.Time(time.Now().UTC())
}

// UUID returns an identifier for name. With SOURCE_DATE_EPOCH set it is a version 5 UUID
// derived from the epoch and name, and so the same in every build; otherwise it is random.
func (r *Resolver) UUID(name string) uuid.UUID {
	v, ok := r.Epoch()
	if !ok {
		return uuid.New()
	}
	data := make([]byte, 0, len(name)+21)
	data = strconv.AppendInt(data, v, 10)
	data = append(data, ':')
	data = append(data, name...)
	return uuid.NewSHA1(uuidNamespace, data)
}

var defaultResolver = New()

// Resolve resolves candidate with the process environment at the host's native width
func Resolve(candidate int64) int64 {
	return defaultResolver.Resolve(candidate)
}

// Now the current time in UTC, or SOURCE_DATE_EPOCH when set
func Now() time.Time {
	return defaultResolver.Now()
}

// UUID an identifier for name, stable across builds when SOURCE_DATE_EPOCH is set
func UUID(name string) uuid.UUID {
	return defaultResolver.UUID(name)
}
