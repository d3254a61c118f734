// Package recurrence expands a seed transaction and a recurrence rule into
// a fully linked series of future transaction instances. The expander is
// pure: it performs no I/O, receives the current time explicitly, and
// leaves persistence and reminder scheduling to its caller.
package recurrence

import (
	"fmt"
	"sort"
	"time"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/uuid"
)

// DefaultMaxInstances caps series expansion. A multi-year daily rule is
// legitimate; an unbounded one is a resource-exhaustion hazard.
const DefaultMaxInstances = 10000

// Expander generates recurrence series. The zero value is not usable;
// construct with New.
type Expander struct {
	maxInstances int
	newID        func() string
}

// New creates an Expander. maxInstances <= 0 selects DefaultMaxInstances;
// a nil newID uses UUIDv7 generation. Tests inject a deterministic newID.
func New(maxInstances int, newID func() string) *Expander {
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}
	if newID == nil {
		newID = uuid.New
	}
	return &Expander{maxInstances: maxInstances, newID: newID}
}

// Series is the result of expanding a seed transaction.
type Series struct {
	// Instances holds the seed followed by every generated instance, in
	// ascending date order, each carrying the rule copy and the full
	// sibling id set.
	Instances []models.Transaction

	// EndDate is the date of the last materialized instance, which may be
	// earlier than the rule's nominal end date.
	EndDate time.Time
}

// GenerateSeries expands seed by rule into discrete instances up to and
// including the day containing rule.EndDate. The boundary is evaluated
// against the end date combined with now's time-of-day, so a final
// occurrence falling exactly on the end date is kept regardless of the
// hour the rule was created.
//
// A rule whose end date is not after the seed's date yields just the seed
// with an empty sibling set; that is a no-op expansion, not an error.
func (e *Expander) GenerateSeries(seed models.Transaction, rule models.RecurrenceRule, now time.Time) (*Series, error) {
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	if seed.ID == "" {
		seed.ID = e.newID()
	}
	seed.Recurrence = rule
	seed.SiblingIDs = models.IDSet{}

	instances := []models.Transaction{seed}
	bound := adjustedEndDate(rule.EndDate, now, seed.Date.Location())

	for next := Step(seed.Date, rule.Period, rule.Unit); !next.After(bound); next = Step(next, rule.Period, rule.Unit) {
		if len(instances) >= e.maxInstances {
			return nil, apperrors.WithMessage(apperrors.ErrExcessiveExpansion,
				fmt.Sprintf("recurrence rule expands beyond %d instances", e.maxInstances))
		}

		instance := seed
		instance.Base = models.Base{ID: e.newID()}
		instance.Date = next
		instance.ReminderID = nil
		instances = append(instances, instance)
	}

	linkSiblings(instances)
	return &Series{
		Instances: instances,
		EndDate:   instances[len(instances)-1].Date,
	}, nil
}

// FindFutureSiblings returns every transaction in all that is a sibling of
// instance and dated strictly after it, in ascending date order. This is
// the target set for "apply this edit to all future occurrences". The
// result is empty, never nil, when no sibling qualifies.
func FindFutureSiblings(instance models.Transaction, all []models.Transaction) []models.Transaction {
	future := []models.Transaction{}
	for _, candidate := range all {
		if instance.SiblingIDs.Contains(candidate.ID) && candidate.Date.After(instance.Date) {
			future = append(future, candidate)
		}
	}
	sort.Slice(future, func(i, j int) bool { return future[i].Date.Before(future[j].Date) })
	return future
}

// Regeneration describes how to reconcile an already-materialized series
// after its rule changed. The expander reports the reconciliation; the
// caller applies it as one atomic unit against storage and cancels the
// reminders of deleted instances.
type Regeneration struct {
	// ToDelete holds ids of instances made obsolete by the new rule:
	// every existing sibling dated after the edited instance.
	ToDelete []string

	// ToCreate holds the replacement forward series, excluding the edited
	// instance itself (it already exists and is updated in place).
	ToCreate []models.Transaction

	// ToUpdate holds the edited instance (with the new rule and rebuilt
	// sibling set) followed by the surviving earlier siblings, whose
	// sibling sets were rebuilt but whose stored rules are untouched.
	ToUpdate []models.Transaction
}

// RegenerateFrom recomputes a series after the rule on edited changed.
// Siblings dated after edited are dropped and regenerated under newRule;
// earlier siblings survive with relinked sibling sets. If newRule's end
// date is not after edited's date the result terminates the recurrence as
// of edited: ToCreate is empty while ToDelete still lists all prior
// future siblings.
func (e *Expander) RegenerateFrom(edited models.Transaction, newRule models.RecurrenceRule, existingSiblings []models.Transaction, now time.Time) (*Regeneration, error) {
	if err := validateRule(newRule); err != nil {
		return nil, err
	}

	toDelete := []string{}
	var past []models.Transaction
	for _, sibling := range existingSiblings {
		if sibling.ID == edited.ID {
			continue
		}
		if sibling.Date.After(edited.Date) {
			toDelete = append(toDelete, sibling.ID)
		} else {
			past = append(past, sibling)
		}
	}

	series, err := e.GenerateSeries(edited, newRule, now)
	if err != nil {
		return nil, err
	}

	// Rebuild the full mesh across the edited instance, the survivors,
	// and the replacements.
	all := make([]models.Transaction, 0, 1+len(past)+len(series.Instances)-1)
	all = append(all, series.Instances[0])
	all = append(all, past...)
	all = append(all, series.Instances[1:]...)
	linkSiblings(all)

	return &Regeneration{
		ToDelete: toDelete,
		ToCreate: all[1+len(past):],
		ToUpdate: all[:1+len(past)],
	}, nil
}

// linkSiblings sets every instance's sibling set to the ids of all other
// instances, making the relation symmetric and fully connected. A lone
// instance ends up with an empty set.
func linkSiblings(instances []models.Transaction) {
	ids := make([]string, len(instances))
	for i := range instances {
		ids[i] = instances[i].ID
	}
	for i := range instances {
		instances[i].SiblingIDs = models.NewIDSet(ids...).Without(instances[i].ID)
	}
}

// validateRule rejects structurally invalid rules. An end date on or
// before the seed's date is not checked here: GenerateSeries treats it as
// a no-op expansion and RegenerateFrom relies on that to terminate a
// series. Creation-time validation of the end date is the caller's job.
func validateRule(rule models.RecurrenceRule) error {
	if rule.Period <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "recurrence period must be positive")
	}
	if !rule.Unit.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, fmt.Sprintf("unsupported recurrence unit %q", rule.Unit))
	}
	if rule.EndDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "recurrence end date is required")
	}
	return nil
}
