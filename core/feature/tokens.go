package feature

import (
	"regexp"

	"github.com/codiehq/codesight/schema"
)

// TokenListVersion tracks the per-language token tables below. Bump it
// together with SchemaVersion whenever a table changes, since counts feed
// directly into feature slots.
const TokenListVersion = 1

// secretPattern matches assignments of credential-looking names to string
// literals. Matched case-insensitively across all languages.
var secretPattern = regexp.MustCompile(`(?i)(password|passwd|secret|api_key|apikey|token|private_key)\s*[:=]\s*["'][^"']{4,}["']`)

// languageTokens holds the heuristic token lists for one language. These are
// substring counters, not a parser; the structural feature slots come from
// the optional provider instead.
type languageTokens struct {
	functions []string
	classes   []string
	imports   []string
	comments  []string // line comment markers, matched at line start
	decisions []string // decision point markers for cyclomatic counting
	asserts   []string // test and assertion markers for the coverage proxy

	evalCalls      []string
	execCalls      []string
	osSystemCalls  []string
	subprocessOps  []string
	pickleLoads    []string
	yamlLoads      []string
	jsonLoads      []string
}

var tokenTables = map[schema.Language]languageTokens{
	schema.LangPython: {
		functions: []string{"def "},
		classes:   []string{"class "},
		imports:   []string{"import ", "from "},
		comments:  []string{"#"},
		decisions: []string{"if ", "elif ", "for ", "while ", "except", " and ", " or "},
		asserts:   []string{"assert ", "def test_", "unittest", "pytest"},

		evalCalls:     []string{"eval("},
		execCalls:     []string{"exec("},
		osSystemCalls: []string{"os.system("},
		subprocessOps: []string{"subprocess.call(", "subprocess.run(", "subprocess.Popen("},
		pickleLoads:   []string{"pickle.loads(", "pickle.load("},
		yamlLoads:     []string{"yaml.load("},
		jsonLoads:     []string{"json.loads("},
	},
	schema.LangGo: {
		functions: []string{"func "},
		classes:   []string{"type "},
		imports:   []string{"import"},
		comments:  []string{"//"},
		decisions: []string{"if ", "for ", "case ", "select ", "&&", "||"},
		asserts:   []string{"func Test", "t.Run(", "assert.", "require."},

		osSystemCalls: []string{"exec.Command("},
		subprocessOps: []string{"syscall.Exec("},
		yamlLoads:     []string{"yaml.Unmarshal("},
		jsonLoads:     []string{"json.Unmarshal("},
	},
	schema.LangJavaScript: {
		functions: []string{"function ", "=> "},
		classes:   []string{"class "},
		imports:   []string{"import ", "require("},
		comments:  []string{"//"},
		decisions: []string{"if ", "for ", "while ", "case ", "catch", "&&", "||"},
		asserts:   []string{"it(", "describe(", "expect(", "assert"},

		evalCalls:     []string{"eval("},
		execCalls:     []string{"new Function("},
		osSystemCalls: []string{"child_process.exec(", "execSync("},
		subprocessOps: []string{"child_process.spawn(", "spawnSync("},
		jsonLoads:     []string{"JSON.parse("},
	},
	schema.LangJava: {
		classes:   []string{"class ", "interface ", "enum "},
		imports:   []string{"import "},
		comments:  []string{"//"},
		decisions: []string{"if ", "for ", "while ", "case ", "catch", "&&", "||"},
		asserts:   []string{"@Test", "assertEquals", "assertTrue"},

		osSystemCalls: []string{"Runtime.getRuntime().exec("},
		subprocessOps: []string{"ProcessBuilder("},
		pickleLoads:   []string{"ObjectInputStream(", "readObject("},
	},
	schema.LangRuby: {
		functions: []string{"def "},
		classes:   []string{"class ", "module "},
		imports:   []string{"require ", "require_relative "},
		comments:  []string{"#"},
		decisions: []string{"if ", "elsif ", "unless ", "while ", "until ", "rescue", " and ", " or "},
		asserts:   []string{"def test_", "assert", "it "},

		evalCalls:     []string{"eval("},
		osSystemCalls: []string{"system("},
		subprocessOps: []string{"Open3."},
		pickleLoads:   []string{"Marshal.load("},
		yamlLoads:     []string{"YAML.load("},
		jsonLoads:     []string{"JSON.parse("},
	},
}

// genericTokens is the fallback for unknown languages. It keeps only the
// markers that appear across many languages.
var genericTokens = languageTokens{
	imports:   []string{"import ", "include ", "require "},
	comments:  []string{"//", "#"},
	decisions: []string{"if ", "for ", "while ", "case "},
	asserts:   []string{"assert"},

	evalCalls:     []string{"eval("},
	execCalls:     []string{"exec("},
	osSystemCalls: []string{"system("},
}

// tokensFor returns the token table for a language, falling back to the
// generic table. TypeScript shares the JavaScript table: every counted
// marker is identical across the two.
func tokensFor(lang schema.Language) languageTokens {
	if lang == schema.LangTypeScript {
		lang = schema.LangJavaScript
	}
	if t, ok := tokenTables[lang]; ok {
		return t
	}
	return genericTokens
}
