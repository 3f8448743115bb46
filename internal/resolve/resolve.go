// Package resolve maps a category key to its candidate sequence, falling back
// to the table's _default, and picks one candidate with a selection policy.
package resolve

import (
	"fmt"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/entropy"
)

// ConfigurationError means the catalog cannot serve a lookup: the key has no
// entry and the fallback is missing or empty. It is an authoring bug.
type ConfigurationError struct {
	Table  string
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("catalog %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("catalog %s[%s]: %s", e.Table, e.Key, e.Reason)
}

// Resolver draws candidates with one entropy source and policy.
type Resolver struct {
	src    entropy.Source
	policy Policy
}

// New creates a resolver. A nil policy means Uniform.
func New(src entropy.Source, policy Policy) *Resolver {
	if policy == nil {
		policy = Uniform{}
	}
	return &Resolver{src: src, policy: policy}
}

// Source returns the resolver's entropy source.
func (r *Resolver) Source() entropy.Source { return r.src }

// Choice is a resolved candidate with where it came from.
type Choice[T any] struct {
	Value    T
	Pool     string
	Index    int
	Fallback bool
}

// Candidates returns the sequence a key resolves to: its own entry when that
// is non-empty, else the default. ok is false only for an optional table
// whose default is empty.
func Candidates[K ~string, T any](t *catalog.Table[K, T], key K) (items []T, fallback, ok bool, err error) {
	if items, found := t.Entry(key); found && len(items) > 0 {
		return items, false, true, nil
	}
	def, has := t.Default()
	if !has {
		return nil, true, false, &ConfigurationError{Table: t.Name(), Key: string(key), Reason: "no entry and no " + catalog.DefaultKey}
	}
	if len(def) == 0 {
		if t.Optional() {
			return nil, true, false, nil
		}
		return nil, true, false, &ConfigurationError{Table: t.Name(), Key: string(key), Reason: "no entry and " + catalog.DefaultKey + " is empty"}
	}
	return def, true, true, nil
}

// Choose resolves key and reports which pool and index were used.
func Choose[K ~string, T any](r *Resolver, t *catalog.Table[K, T], key K, subject string) (Choice[T], error) {
	c, ok, err := ChooseOptional(r, t, key, subject)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, &ConfigurationError{Table: t.Name(), Key: string(key), Reason: "no entry and " + catalog.DefaultKey + " is empty"}
	}
	return c, nil
}

// ChooseOptional is Choose for tables whose default may be empty.
func ChooseOptional[K ~string, T any](r *Resolver, t *catalog.Table[K, T], key K, subject string) (Choice[T], bool, error) {
	var c Choice[T]
	items, fallback, ok, err := Candidates(t, key)
	if err != nil || !ok {
		return c, false, err
	}
	pool := Pool{ID: t.PoolID(key, fallback), Subject: subject, Size: len(items)}
	i := r.policy.Pick(r.src, pool)
	return Choice[T]{Value: items[i], Pool: pool.ID, Index: i, Fallback: fallback}, true, nil
}

// Resolve returns one candidate for key, falling back to the default.
func Resolve[K ~string, T any](r *Resolver, t *catalog.Table[K, T], key K, subject string) (T, error) {
	c, err := Choose(r, t, key, subject)
	return c.Value, err
}

// ResolveOptional returns ok=false without error when the key has no entry and
// the table's optional default is empty.
func ResolveOptional[K ~string, T any](r *Resolver, t *catalog.Table[K, T], key K, subject string) (T, bool, error) {
	c, ok, err := ChooseOptional(r, t, key, subject)
	return c.Value, ok, err
}

// Draw picks from a flat table.
func Draw[T any](r *Resolver, t *catalog.Table[catalog.NoKey, T], subject string) (T, error) {
	return Resolve(r, t, "", subject)
}

// Compound is a template resolved together with its auxiliary value.
type Compound struct {
	Choice[catalog.Template]
	Aux    string
	HasAux bool
}

// ResolveCompound resolves a template and, when the chosen sequence carries an
// auxiliary pool, draws an auxiliary value from it. The auxiliary draw uses a
// forked stream so it is independent of the template draw.
func ResolveCompound[K ~string](r *Resolver, t *catalog.CompoundTable[K], key K, subject string) (Compound, error) {
	c, err := Choose(r, t.Table, key, subject)
	if err != nil {
		return Compound{}, err
	}
	out := Compound{Choice: c}

	aux, ok := t.Aux(key, c.Fallback)
	if !ok {
		return out, nil
	}
	if len(aux) == 0 {
		return out, &ConfigurationError{Table: t.Name(), Key: string(key), Reason: "compound entry has no auxiliary values"}
	}

	pool := Pool{ID: c.Pool + "#aux", Subject: subject, Size: len(aux)}
	i := r.policy.Pick(entropy.Fork(r.src, pool.ID), pool)
	out.Aux = aux[i]
	out.HasAux = true
	return out, nil
}

// MaybeApply rolls a Bernoulli trial: chance <= 0 is never true and
// chance >= 1 always is. Out-of-range chances draw no entropy.
func MaybeApply(chance float64, src entropy.Source) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 1 {
		return true
	}
	return src.Float64() < chance
}
