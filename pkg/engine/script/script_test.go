package script_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openInula/inula-sub000/pkg/engine/diag"
	"github.com/openInula/inula-sub000/pkg/engine/resolve"
	"github.com/openInula/inula-sub000/pkg/engine/script"
	"github.com/openInula/inula-sub000/pkg/engine/shell"
	"github.com/openInula/inula-sub000/pkg/engine/symbols"
	"github.com/openInula/inula-sub000/pkg/syntax"
)

type result struct {
	code string
	syms *symbols.Context
	rep  *diag.Reporter
}

func convert(t *testing.T, style symbols.Style, lang syntax.Language, src string) (result, error) {
	t.Helper()

	syms := symbols.New("Demo.vue", style)
	syms.Name = "Demo"

	sh := shell.New(syms)
	rep := diag.NewReporter(nil, "Demo.vue")
	res := resolve.New(syms, sh, rep)

	p := script.New(syms, res, sh, rep, script.Options{Language: lang})
	if err := p.Run(t.Context(), src); err != nil {
		return result{syms: syms, rep: rep}, err
	}

	code, err := sh.Finalize()
	require.NoError(t, err)

	return result{code: code, syms: syms, rep: rep}, nil
}

func mustConvert(t *testing.T, style symbols.Style, src string) result {
	t.Helper()

	r, err := convert(t, style, syntax.JavaScript, src)
	require.NoError(t, err)

	return r
}

func TestOptions_CanonicalOrder(t *testing.T) {
	t.Parallel()

	src := `export default {
  computed: {
    doubled() { return this.count * 2; },
  },
  data() {
    return { count: 1 };
  },
}`

	r := mustConvert(t, symbols.StyleOptions, src)

	assert.Equal(t, symbols.KindReactive, r.syms.Classify("count"))
	assert.Equal(t, symbols.KindComputed, r.syms.Classify("doubled"))

	state := strings.Index(r.code, "const state = useReactive({ count: 1 });")
	doubled := strings.Index(r.code, "const doubled = useComputed(() => { return state.count * 2; });")

	require.GreaterOrEqual(t, state, 0, r.code)
	require.GreaterOrEqual(t, doubled, 0, r.code)
	assert.Less(t, state, doubled)
	assert.False(t, r.rep.Has(diag.CodeUnclassifiedRoot))
}

func TestOptions_FullComponent(t *testing.T) {
	t.Parallel()

	src := `import Child from './Child.vue';
import { mapState, mapActions } from 'vuex';
const LIMIT = 10;
export default {
  name: 'todo-list',
  components: { Child },
  props: { title: { type: String, default: 'Todos' }, items: Array },
  data() { return { draft: '' }; },
  computed: { ...mapState(['user']), count() { return this.items.length; } },
  methods: {
    ...mapActions('todos', ['save']),
    add() { this.$emit('add', this.draft); this.draft = ''; this.last = Date.now(); },
  },
  watch: { draft: { handler(v) { this.save(v); }, immediate: true } },
  mounted() { this.$refs.input.focus(); },
}`

	r := mustConvert(t, symbols.StyleOptions, src)

	assert.Equal(t, "TodoList", r.syms.Name)
	assert.Equal(t, "rawProps", r.syms.PropsParam)

	target, ok := r.syms.ComponentFor("child")
	require.True(t, ok)
	assert.Equal(t, "Child", target)

	for _, want := range []string{
		"import Child from './Child.jsx';",
		"import { useStore } from '@openinula/vue-adapter/vuex';",
		"const LIMIT = 10;",
		"function TodoList(rawProps) {",
		"const props = mergeDefaults(rawProps, { title: 'Todos' });",
		"const store = useStore();",
		"const lastRef = useReference();",
		"const refs = useRefs();",
		"const state = useReactive({ draft: '' });",
		"const user = useComputed(() => store.state.user);",
		"const count = useComputed(() => { return props.items.length; });",
		"function save(...args) { return store.dispatch('todos/save', ...args); }",
		"function add() { props.onAdd?.(state.draft); state.draft = ''; lastRef.value = Date.now(); }",
		"useWatch(() => state.draft, (v) => { save(v); }, { immediate: true });",
		"onMounted(() => { refs.input.focus(); });",
		"export default TodoList;",
	} {
		assert.Contains(t, r.code, want)
	}

	assert.Equal(t, []string{"add"}, r.syms.Emits)

	ref, ok := r.syms.SelfAlias("last")
	require.True(t, ok)
	assert.Equal(t, "lastRef", ref)
}

func TestOptions_MembersAndHooks(t *testing.T) {
	t.Parallel()

	src := `export default {
  inject: ['theme', 'locale'],
  provide() { return { api: this.client }; },
  props: ['client'],
  directives: { clickOutside: { mounted(el) { el.dataset.on = '1'; } } },
  components: { 'line-chart': () => import('./LineChart.vue') },
  filters: { upper(v) { return v.toUpperCase(); } },
  created() { this.theme.apply(); },
  beforeDestroy() { this.locale.release(); },
}`

	r := mustConvert(t, symbols.StyleOptions, src)

	for _, want := range []string{
		"import { lazy } from 'openinula';",
		"const vClickOutside = { mounted(el) { el.dataset.on = '1'; } };",
		"const LineChart = lazy(() => import('./LineChart.jsx'));",
		"const theme = useInject('theme');",
		"const locale = useInject('locale');",
		"function upper(v) { return v.toUpperCase(); }",
		"useOnce(() => { theme.apply(); });",
		"onBeforeUnmount(() => { locale.release(); });",
		"useProvide('api', props.client);",
	} {
		assert.Contains(t, r.code, want)
	}

	assert.Equal(t, "vClickOutside", r.syms.LocalDirectives["click-outside"])

	target, ok := r.syms.ComponentFor("line-chart")
	require.True(t, ok)
	assert.Equal(t, "LineChart", target)
}

func TestOptions_DefineComponentAndUnknown(t *testing.T) {
	t.Parallel()

	src := `import { defineComponent } from 'vue';
export default defineComponent({
  mixins: [base],
  data: () => ({ open: false }),
  methods: { toggle() { this.open = !this.open; } },
})`

	r := mustConvert(t, symbols.StyleOptions, src)

	assert.True(t, r.rep.Has(diag.CodeUnknownOption))
	assert.Contains(t, r.code, "const state = useReactive({ open: false });")
	assert.Contains(t, r.code, "function toggle() { state.open = !state.open; }")
	assert.NotContains(t, r.code, "defineComponent")
}

func TestOptions_UnknownOptionSuggestion(t *testing.T) {
	t.Parallel()

	r := mustConvert(t, symbols.StyleOptions, `export default { metods: { a() {} } }`)

	diags := r.rep.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeUnknownOption, diags[0].Code)
	assert.Contains(t, diags[0].Message, `did you mean "methods"?`)
}

func TestOptions_FatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "data not object", src: `export default { data() { return makeState(); } }`, want: script.ErrDataNotObject},
		{name: "export not object", src: `export default makeComponent();`, want: script.ErrUnsupportedOptions},
		{name: "parse error", src: `export default {`, want: script.ErrScriptParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := convert(t, symbols.StyleOptions, syntax.JavaScript, tt.src)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, script.OptionProps, script.KindOf("props"))
	assert.Equal(t, script.OptionLifecycle, script.KindOf("mounted"))
	assert.Equal(t, script.OptionLifecycle, script.KindOf("beforeDestroy"))
	assert.Equal(t, script.OptionUnknown, script.KindOf("mixins"))
	assert.Less(t, script.OptionProps, script.OptionData)
	assert.Less(t, script.OptionData, script.OptionComputed)
	assert.Less(t, script.OptionName, script.OptionUnknown)
	assert.Equal(t, "watch", script.OptionWatch.String())
}

func TestComposition(t *testing.T) {
	t.Parallel()

	src := `import { ref, computed as c, watch, onMounted } from 'vue';
import Item from './Item.vue';
const props = defineProps({ start: { type: Number, default: 0 } });
const emit = defineEmits(['change']);
const count = ref(props.start);
const doubled = c(() => count.value * 2);
const cache = new Map();
const label = String(count.value);
watch(count, (v) => emit('change', v));
onMounted(() => { console.log('ready'); });
function inc() { count.value++; }`

	r := mustConvert(t, symbols.StyleComposition, src)

	assert.Equal(t, symbols.KindProp, r.syms.Classify("start"))
	assert.Equal(t, symbols.KindRef, r.syms.Classify("count"))
	assert.Equal(t, symbols.KindComputed, r.syms.Classify("doubled"))
	assert.Equal(t, []string{"change"}, r.syms.Emits)

	for _, want := range []string{
		"import Item from './Item.jsx';",
		"function Demo(rawProps) {",
		"const props = mergeDefaults(rawProps, { start: 0 });",
		"const emit = useEmits(props);",
		"const count = useReference(props.start);",
		"const doubled = useComputed(() => count.value * 2);",
		"const cache = useOnce(() => new Map());",
		"const label = String(count.value);",
		"useWatch(count, (v) => emit('change', v));",
		"onMounted(() => { console.log('ready'); });",
		"function inc() { count.value++; }",
	} {
		assert.Contains(t, r.code, want)
	}

	assert.NotContains(t, r.code, "from 'vue'")
	assert.NotContains(t, r.code, "defineProps")

	_, ok := r.syms.ComponentFor("item")
	assert.True(t, ok)
}

func TestComposition_TypedProps(t *testing.T) {
	t.Parallel()

	src := `interface Props { label: string; size?: number }
const props = withDefaults(defineProps<Props>(), { size: 2 });
const emit = defineEmits<{ (e: 'close'): void }>();
const vFocus = { mounted: (el: HTMLElement) => el.focus() };`

	r, err := convert(t, symbols.StyleComposition, syntax.TypeScript, src)
	require.NoError(t, err)

	assert.Equal(t, symbols.KindProp, r.syms.Classify("label"))
	assert.Equal(t, symbols.KindProp, r.syms.Classify("size"))
	assert.Equal(t, []string{"close"}, r.syms.Emits)
	assert.Equal(t, "vFocus", r.syms.LocalDirectives["focus"])
	assert.Contains(t, r.code, "interface Props { label: string; size?: number }")
	assert.Contains(t, r.code, "const props = mergeDefaults(rawProps, { size: 2 });")
}

func TestComposition_ReactiveAndToRefs(t *testing.T) {
	t.Parallel()

	src := `import { reactive, toRefs } from 'vue';
const form = reactive({ name: '' });
const { name } = toRefs(form);`

	r := mustConvert(t, symbols.StyleComposition, src)

	assert.Equal(t, symbols.KindRef, r.syms.Classify("name"))
	assert.Equal(t, symbols.KindNone, r.syms.Classify("form"))
	assert.Contains(t, r.code, "const form = useReactive({ name: '' });")
	assert.Contains(t, r.code, "const { name } = toRefs(form);")
	assert.Contains(t, r.code, "import { toRefs, useReactive } from '@openinula/vue-adapter';")
}
