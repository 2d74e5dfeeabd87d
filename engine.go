package linkml

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// EngineConfig controls the validation engine's concurrency and timeout
// behavior, functional-option configured the same way CompilerConfig is.
type EngineConfig struct {
	MaxWorkers   int
	Timeout      time.Duration
	TimeoutGrace time.Duration

	// externalIndex supplies instance-backed enum membership data gathered
	// from a class other than the one being validated (e.g. a set of
	// Country instances consulted while validating Shipment records), via
	// WithInstanceIndex.
	externalIndex *InstanceIndex
}

// EngineOption configures an EngineConfig.
type EngineOption func(*EngineConfig)

// WithMaxWorkers bounds how many instances ValidateBatch evaluates
// concurrently.
func WithMaxWorkers(n int) EngineOption {
	return func(c *EngineConfig) { c.MaxWorkers = n }
}

// WithTimeout bounds the wall-clock time ValidateBatch will run before
// returning a partial report: an instance whose validation the deadline cuts
// short carries a resource_limit issue in place of its remaining findings.
func WithTimeout(d time.Duration) EngineOption {
	return func(c *EngineConfig) { c.Timeout = d }
}

// WithInstanceIndex supplies a pre-built InstanceIndex (see
// NewInstanceIndex/AddInstances) so instance-backed enums whose backing
// class is different from the one being validated can resolve membership
// against data gathered outside the current batch.
func WithInstanceIndex(idx *InstanceIndex) EngineOption {
	return func(c *EngineConfig) { c.externalIndex = idx }
}

func defaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxWorkers:   8,
		TimeoutGrace: time.Duration(DefaultTimeoutGraceMillis) * time.Millisecond,
	}
}

// Validate checks a single decoded instance against the class bank was
// compiled for, returning a stably-ordered ValidationReport.
func (bank *ValidatorBank) Validate(ctx context.Context, instance map[string]any) (*ValidationReport, error) {
	report := NewValidationReport()
	var order int64

	ec := &evalContext{ctx: ctx, view: bank.view, path: bank.className, docOrder: &order}

	if err := bank.validateInstance(ec, instance, report); err != nil {
		return nil, err
	}

	report.StableSort()
	return report, nil
}

// validateInstance runs every compiled Validator over each effective slot
// of an instance, then evaluates the class's rules.
func (bank *ValidatorBank) validateInstance(ec *evalContext, instance map[string]any, report *ValidationReport) error {
	applyIfAbsentDefaults(bank.class, instance)

	for _, slotName := range bank.class.SlotOrder {
		slot := bank.class.Slots[slotName]
		value, present := instance[slotName]
		if !present {
			value = nil
		}

		slotEC := &evalContext{
			ctx: ec.ctx, view: ec.view, instances: ec.instances, docOrder: ec.docOrder,
			path: joinPath(ec.path, slotName), instance: instance,
		}

		select {
		case <-ec.ctx.Done():
			return &ResourceLimit{Code: ResourceLimitCancelled, Message: ec.ctx.Err().Error()}
		default:
		}

		for _, v := range bank.validators {
			if err := v.Validate(slotEC, slot, value, report); err != nil {
				return err
			}
		}
	}

	if err := evalRules(ec, bank.class, instance, report); err != nil {
		return err
	}

	return nil
}

// applyIfAbsentDefaults injects a slot's ifabsent default into instance
// before the required check runs, so a slot carrying both `required: true`
// and an `ifabsent` default is satisfied by the default rather than
// flagged missing — the resolution of the ifabsent-vs-required open
// question (see DESIGN.md).
func applyIfAbsentDefaults(class *EffectiveClass, instance map[string]any) {
	for name, slot := range class.Slots {
		if slot.IfAbsent == "" {
			continue
		}
		if _, present := instance[name]; !present {
			instance[name] = resolveIfAbsent(slot.IfAbsent)
		}
	}
}

// resolveIfAbsent evaluates the small set of ifabsent default forms LinkML
// schemas use: a bare literal value, or one of the "true"/"false" boolean
// markers. Anything else (including "bnode") is treated as a literal string,
// matching LinkML's own permissive default_funcs-style fallback.
func resolveIfAbsent(spec string) any {
	switch spec {
	case "true":
		return true
	case "false":
		return false
	default:
		return spec
	}
}

// ValidateBatch checks many instances of the same class concurrently,
// sharing bank's compiled validators and the immutable SchemaView across a
// bounded worker pool, then merging per-worker reports back into input
// document order so the result is identical regardless of which worker
// finished first (spec.md §8's order-stability property).
func (bank *ValidatorBank) ValidateBatch(ctx context.Context, instances []map[string]any, opts ...EngineOption) (*ValidationReport, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	idx := buildInstanceIndex(bank.class.Name, instances)
	if cfg.externalIndex != nil {
		idx.mergeFrom(cfg.externalIndex)
	}

	reports := make([]*ValidationReport, len(instances))
	var order int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxWorkers)

	for i, inst := range instances {
		i, inst := i, inst
		g.Go(func() error {
			sub := NewValidationReport()
			ec := &evalContext{
				ctx: gctx, view: bank.view, instances: idx, docOrder: &order,
				path: fmt.Sprintf("%s[%d]", bank.className, i),
			}
			if err := bank.validateInstance(ec, inst, sub); err != nil {
				if isResourceLimit(err) {
					sub.AddIssue(resourceLimitIssue(ec, err))
					reports[i] = sub
					return nil
				}
				return err
			}
			reports[i] = sub
			return nil
		})
	}

	merged := NewValidationReport()
	waitErr := g.Wait()

	// Each instance's issues are ordered within its own report, and reports
	// are merged by input index; docOrder is shared across workers, so
	// sorting the merged report by it would reintroduce completion order.
	for _, sub := range reports {
		if sub != nil {
			sub.StableSort()
		}
		merged.Merge(sub)
	}

	checkUniqueKeys(bank.class, instances, merged, &order)

	if waitErr != nil {
		if ctx.Err() != nil {
			merged.AddIssue(&Issue{
				Severity: SeverityError,
				Code:     "timeout",
				Message:  "validation batch exceeded its timeout",
				docOrder: int(atomic.AddInt64(&order, 1)),
			})
			return merged, nil
		}
		return nil, waitErr
	}

	return merged, nil
}

func isResourceLimit(err error) bool {
	_, ok := err.(*ResourceLimit)
	return ok
}

func resourceLimitIssue(ec *evalContext, err error) *Issue {
	return &Issue{
		Severity: SeverityError,
		Path:     ec.path,
		Code:     "resource_limit",
		Message:  err.Error(),
		docOrder: ec.nextOrder(),
	}
}

// InstanceIndex indexes a set of instances by class name and slot name, so
// EnumValidator can resolve instance-backed enums without re-scanning a
// batch for every lookup. A batch's own instances are indexed
// automatically; data from another class (e.g. a Country registry
// consulted while validating Shipment records) is added via
// NewInstanceIndex/AddInstances and supplied through WithInstanceIndex.
type InstanceIndex struct {
	byClassSlot map[string]map[string][]string
}

// NewInstanceIndex returns an empty index ready for AddInstances.
func NewInstanceIndex() *InstanceIndex {
	return &InstanceIndex{byClassSlot: make(map[string]map[string][]string)}
}

// AddInstances indexes every string-valued slot of instances under
// className, merging into whatever that class already holds.
func (idx *InstanceIndex) AddInstances(className string, instances []map[string]any) {
	bySlot, ok := idx.byClassSlot[className]
	if !ok {
		bySlot = make(map[string][]string)
		idx.byClassSlot[className] = bySlot
	}
	for _, inst := range instances {
		for slot, v := range inst {
			s, ok := v.(string)
			if !ok {
				continue
			}
			bySlot[slot] = append(bySlot[slot], s)
		}
	}
}

// mergeFrom folds other's entries into idx, keeping idx's own values first.
func (idx *InstanceIndex) mergeFrom(other *InstanceIndex) {
	if other == nil {
		return
	}
	for class, bySlot := range other.byClassSlot {
		for slot, values := range bySlot {
			dst, ok := idx.byClassSlot[class]
			if !ok {
				dst = make(map[string][]string)
				idx.byClassSlot[class] = dst
			}
			dst[slot] = append(dst[slot], values...)
		}
	}
}

// buildInstanceIndex indexes instances (all assumed to be of className) by
// every string-valued slot, keyed for later instance-backed enum lookups.
func buildInstanceIndex(className string, instances []map[string]any) *InstanceIndex {
	idx := NewInstanceIndex()
	idx.AddInstances(className, instances)
	return idx
}

func (idx *InstanceIndex) valuesFor(class, slot string) []string {
	if idx == nil {
		return nil
	}
	bySlot, ok := idx.byClassSlot[class]
	if !ok {
		return nil
	}
	return bySlot[slot]
}
