// Package naming gives the parts of the machine stable, human-readable
// names. Device names are dot-separated paths such as "board.vdp" and
// identify owners in logs, dispatch traces, and the monitor.
package naming

// Named is anything that can be identified by its name.
type Named interface {
	// Name returns the full, dot-separated name of the object.
	Name() string
}

// NamedBase carries the name of the type that embeds it.
type NamedBase struct {
	name string
}

// MakeNamedBase creates a NamedBase with the given full name.
func MakeNamedBase(name string) NamedBase {
	return NamedBase{name: name}
}

// Name returns the full name of the object.
func (b *NamedBase) Name() string {
	return b.name
}
