// Package filtering provides the rules that decide which catalog assets belong
// to an asset library.
//
// # Architecture
//
// Every rule implements Filter, a three phase contract driven by the processor:
//
//   - PreFilter: one-time setup for a run, such as compiling the pattern or
//     scanning every event of the catalog
//   - IsAssetAvailable: a pure predicate evaluated concurrently for each asset
//   - PostFilter: drops whatever PreFilter computed
//
// Filters are configuration objects and never hold per-run state. PreFilter
// stores its results in the Run, keyed by the filter itself, so a filter that
// is shared by several libraries can be evaluated by independent runs.
//
// # Filters
//
//   - TextFilter: matches the name, on-disk path or authoring path of an asset
//   - EventFilter: selects the banks and media referenced by matching events
//   - SoundBankTypeFilter: selects user-defined or auto-defined banks
//
// # Patterns
//
// Text and event filters share the same pattern language: either a whitespace
// separated list of globs where '?' matches one character and '*' matches any
// run of characters, or a single regular expression searched anywhere in the
// input. An empty pattern never matches.
//
//   - "Foo*" matches "FooBar" and "Foo"
//   - "*_VO_* Play_?" matches "Play_VO_Intro" and "Play_A"
package filtering
