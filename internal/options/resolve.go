package options

// Resolved is an option set whose gap fields are all concrete.
// It is produced per format request and never aliases the live set.
type Resolved OptionSet

// Resolve fills every unset gap in live with the matching fallback value.
// Non-empty values are kept verbatim, even if they fail Validate: the
// engine has the final say over what it accepts.
func Resolve(live, fallback OptionSet) Resolved {
	// live is a value copy; the caller's set is never touched.
	out := live
	for _, f := range schema {
		if f.Kind != KindGap {
			continue
		}
		if v := f.gap(&out); *v == Unset {
			*v = *f.gap(&fallback)
		}
	}
	return Resolved(out)
}

// Options returns the resolved values as a plain OptionSet.
func (r Resolved) Options() OptionSet {
	return OptionSet(r)
}

// Complete reports whether no gap field is unset.
func (r Resolved) Complete() bool {
	set := OptionSet(r)
	for _, f := range schema {
		if f.Kind == KindGap && *f.gap(&set) == Unset {
			return false
		}
	}
	return true
}
