// Package link holds the link constructor: the pending or resolved form of a
// single link from an importing component to the component that exports the
// interface it needs.
package link

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/wail/catalog"
	"github.com/wippyai/wail/manifest"
)

var validate = validator.New()

// State is the lifecycle position of a constructor.
type State int

const (
	// Pending constructors have no target yet.
	Pending State = iota
	// Pinned constructors carry a target set by an existing description.
	Pinned
	// Resolved constructors carry a target chosen by the resolver.
	Resolved
	// Unsatisfiable constructors failed resolution; Reason says why.
	Unsatisfiable
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Pinned:
		return "pinned"
	case Resolved:
		return "resolved"
	case Unsatisfiable:
		return "unsatisfiable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Constructor is one link from Source to Target for the interfaces of
// Namespace:Package. Constructors are created by the graph and only change
// state afterwards; they are never removed.
type Constructor struct {
	Source     string
	Target     string
	Interfaces []string `validate:"required,min=1,dive,required"`
	Namespace  string   `validate:"required"`
	Package    string   `validate:"required"`
	State      State
	Reason     string
}

// New creates a pending constructor for source's import of id.
func New(source string, id catalog.Interface) *Constructor {
	return &Constructor{
		Source:     source,
		Interfaces: []string{id.Name},
		Namespace:  id.Namespace,
		Package:    id.Package,
		State:      Pending,
	}
}

// Interface returns the identifier of the first linked interface.
func (c *Constructor) Interface() catalog.Interface {
	var name string
	if len(c.Interfaces) > 0 {
		name = c.Interfaces[0]
	}
	return catalog.NewInterface(c.Namespace, c.Package, name)
}

// HasTarget reports whether a target has been set.
func (c *Constructor) HasTarget() bool {
	return c.Target != ""
}

// Matches reports whether the constructor links source's import of
// interfaces in namespace:pkg.
func (c *Constructor) Matches(source string, interfaces []string, namespace, pkg string) bool {
	if c.Source != source || c.Namespace != namespace || c.Package != pkg {
		return false
	}
	if len(c.Interfaces) != len(interfaces) {
		return false
	}
	for i := range interfaces {
		if c.Interfaces[i] != interfaces[i] {
			return false
		}
	}
	return true
}

// Pin sets an authoritative target. Allowed from any state.
func (c *Constructor) Pin(target string) {
	c.Target = target
	c.State = Pinned
	c.Reason = ""
}

// Resolve sets a discovered target. Pending constructors resolve, and so do
// unsatisfiable ones without a target, since a later merge may have added
// an exporter. Pinned and resolved targets are never replaced.
func (c *Constructor) Resolve(target string) error {
	switch {
	case c.State == Pending:
	case c.State == Unsatisfiable && !c.HasTarget():
	default:
		return fmt.Errorf("link %s: cannot resolve from state %s", c.describe(), c.State)
	}
	c.Target = target
	c.State = Resolved
	c.Reason = ""
	return nil
}

// Fail marks the constructor unsatisfiable. A pinned target is kept so the
// report can name it.
func (c *Constructor) Fail(reason string) {
	c.State = Unsatisfiable
	c.Reason = reason
}

// Name is the deterministic link name "<source>-<target>".
func (c *Constructor) Name() string {
	return c.Source + "-" + c.Target
}

// Validate checks that the constructor is structurally complete.
func (c *Constructor) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch field := fe.StructField(); {
		case field == "Interfaces":
			msgs = append(msgs, "link must have at least one interface")
		case strings.HasPrefix(field, "Interfaces["):
			msgs = append(msgs, "interface name cannot be empty")
		case field == "Namespace":
			msgs = append(msgs, "namespace cannot be empty")
		case field == "Package":
			msgs = append(msgs, "package cannot be empty")
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Trait projects the constructor into a wadm link trait. An unresolved
// constructor yields an empty target name.
func (c *Constructor) Trait() manifest.Trait {
	return manifest.NewLinkTrait(manifest.LinkProperty{
		Name:       c.Name(),
		Namespace:  c.Namespace,
		Package:    c.Package,
		Interfaces: append([]string(nil), c.Interfaces...),
		Source:     &manifest.ConfigDefinition{},
		Target:     manifest.TargetConfig{Name: c.Target},
	})
}

func (c *Constructor) describe() string {
	return c.Source + " -> " + c.Namespace + ":" + c.Package + "/" + strings.Join(c.Interfaces, ",")
}
