// Package compare decides whether a value written to the store differs enough
// from the previous one to notify subscribers.
//
// Strictness levels, from loosest to strictest:
//
//	none                          always notify
//	isEqual                       notify unless deeply equal
//	isEqualRemoveUndefined        deep equality ignoring nil-valued map keys
//	isEqualRemoveUndefinedSorted  as above, ignoring slice order
//	strict                        notify unless the very same value
//
// Any other strictness tag is resolved through a Comparer supplied by the
// caller, for example one built with EvaluatorComparer.
package compare
