package suggest

import "github.com/reactcheck/reactcheck/internal/model"

// template holds the opaque code-before/after fragments and prose used for
// one fix kind. Fragments are static text keyed by fix kind and filled in
// with the component identifier, per spec §4.4's "implementers MAY source
// these from a static template table" allowance.
type template struct {
	issue       string
	cause       string
	explanation string
	before      string
	after       string
}

var templates = map[model.FixKind]template{
	model.FixMemo: {
		issue:       "re-renders frequently with unchanged props",
		cause:       "the component re-renders on every parent render even though its own inputs haven't changed",
		explanation: "Wrapping the component in memo() skips re-rendering when props are shallow-equal to the previous render.",
		before:      "export function %s(props) {\n  return <div>{props.label}</div>\n}",
		after:       "export const %s = memo(function %s(props) {\n  return <div>{props.label}</div>\n})",
	},
	model.FixUseMemo: {
		issue:       "performs an expensive computation on every render",
		cause:       "a derived value is recomputed on every render instead of only when its dependencies change",
		explanation: "useMemo caches the derived value across renders where its dependency list is unchanged.",
		before:      "function %s(props) {\n  const sorted = sortAndFilter(props.items)\n  return <List items={sorted} />\n}",
		after:       "function %s(props) {\n  const sorted = useMemo(() => sortAndFilter(props.items), [props.items])\n  return <List items={sorted} />\n}",
	},
	model.FixUseCallback: {
		issue:       "passes a new function reference to a memoized child on every render",
		cause:       "an inline callback prop defeats the child's memo() because the function identity changes every render",
		explanation: "useCallback keeps the function reference stable across renders where its dependency list is unchanged, letting the memoized child actually skip re-rendering.",
		before:      "function %s() {\n  const onClick = () => doThing()\n  return <Child onClick={onClick} />\n}",
		after:       "function %s() {\n  const onClick = useCallback(() => doThing(), [])\n  return <Child onClick={onClick} />\n}",
	},
	model.FixContextSplit: {
		issue:       "provides a context value that changes often and re-renders every consumer",
		cause:       "a single context value bundles frequently-changing and rarely-changing state, so every update re-renders all consumers regardless of what they actually read",
		explanation: "Splitting the context into one provider per concern lets consumers subscribe only to the slice of state they read.",
		before:      "const AppContext = createContext({ user, theme, notifications })",
		after:       "const UserContext = createContext(user)\nconst ThemeContext = createContext(theme)\nconst NotificationsContext = createContext(notifications)",
	},
	model.FixStateColocation: {
		issue:       "owns state that is only read by a descendant deep in the tree",
		cause:       "state lives higher in the tree than the components that actually use it, forcing every intermediate component to re-render on update",
		explanation: "Moving the state down to the component that owns it narrows the re-render to just that subtree.",
		before:      "function %s() {\n  const [query, setQuery] = useState('')\n  return <Results query={query} onQueryChange={setQuery} />\n}",
		after:       "function %s() {\n  return <Results />\n}\n\nfunction Results() {\n  const [query, setQuery] = useState('')\n  // ...\n}",
	},
	model.FixComponentExtraction: {
		issue:       "mixes frequently-changing props and state in one large component",
		cause:       "a single component re-renders for both prop and state changes that affect only part of its output",
		explanation: "Extracting the volatile subtree into its own component isolates its re-renders from the rest of the output.",
		before:      "function %s(props) {\n  const [state, setState] = useState(props.initial)\n  return (\n    <div>\n      <Header title={props.title} />\n      <Volatile value={state} onChange={setState} />\n    </div>\n  )\n}",
		after:       "function %s(props) {\n  return (\n    <div>\n      <Header title={props.title} />\n      <VolatileSection initial={props.initial} />\n    </div>\n  )\n}\n\nfunction VolatileSection({ initial }) {\n  const [state, setState] = useState(initial)\n  return <Volatile value={state} onChange={setState} />\n}",
	},
}
