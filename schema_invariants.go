package linkml

// checkRangeNarrowing walks every materialized class and verifies that,
// wherever a slot's range was overridden (via slot_usage or a subclass-local
// attribute) rather than inherited unchanged, the new range is the same
// class or a descendant of whatever range the slot's nearest ancestor
// declared — LinkML permits narrowing a range to a more specific class but
// never widening it to an unrelated one.
func (v *SchemaView) checkRangeNarrowing() error {
	for _, ec := range v.classes {
		for sname, slot := range ec.Slots {
			ancestorRange, ancestorClass := ancestorRangeFor(v.doc, ec, sname)
			if ancestorRange == "" || ancestorRange == slot.Range {
				continue
			}

			kind, err := v.ResolveRange(ancestorRange)
			if err != nil || kind != RangeClass {
				// Narrowing rules only constrain class-valued ranges; type
				// and enum ranges are left to the validator bank.
				continue
			}

			if !v.isDescendantOrSelf(slot.Range, ancestorRange) {
				return &SchemaError{
					Code:    SchemaErrorRangeNarrowing,
					Class:   ec.Name,
					Slot:    sname,
					Message: "range " + slot.Range + " is not a narrowing of " + ancestorClass + "'s range " + ancestorRange,
				}
			}
		}
	}
	return nil
}

// ancestorRangeFor finds the range the nearest proper ancestor of ec (in its
// linearization, excluding ec itself) declared for sname, if any.
func ancestorRangeFor(doc *SchemaDocument, ec *EffectiveClass, sname string) (string, string) {
	for _, cname := range ec.Linearization[1:] {
		c := doc.Classes[cname]
		if c == nil {
			continue
		}
		if def := resolveSlotDef(doc, c, sname); def != nil && def.Range != "" {
			return def.Range, cname
		}
	}
	return "", ""
}

// isDescendantOrSelf reports whether candidate names ancestor itself or one
// of its materialized descendants.
func (v *SchemaView) isDescendantOrSelf(candidate, ancestor string) bool {
	if candidate == ancestor {
		return true
	}
	ec, ok := v.classes[candidate]
	if !ok {
		return false
	}
	for _, a := range ec.Linearization {
		if a == ancestor {
			return true
		}
	}
	return false
}

// checkAbstractTargets verifies that no slot's range resolves to a class
// marked abstract: abstract classes exist only to be inherited from, never
// to be the direct range of a slot (they would have no valid instantiable
// instance to validate against).
func (v *SchemaView) checkAbstractTargets() error {
	for _, ec := range v.classes {
		for sname, slot := range ec.Slots {
			kind, err := v.ResolveRange(slot.Range)
			if err != nil || kind != RangeClass {
				continue
			}
			target := v.classes[slot.Range]
			if target != nil && target.Abstract {
				return &SchemaError{
					Code:    SchemaErrorAbstractTarget,
					Class:   ec.Name,
					Slot:    sname,
					Message: "slot range " + slot.Range + " is an abstract class and cannot be instantiated",
				}
			}
		}
	}
	return nil
}
