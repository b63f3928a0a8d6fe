package feature

import "github.com/codiehq/codesight/schema"

// Feature group names used in schema descriptions.
const (
	GroupVolume     = "volume"
	GroupShape      = "shape"
	GroupSecurity   = "security"
	GroupStructural = "structural"
)

// Describe returns the displayable layout of the current feature schema.
// Fields are listed in vector order.
func Describe() schema.FeatureSchemaDescription {
	return schema.FeatureSchemaDescription{
		Version: SchemaVersion,
		Fields: []schema.FeatureField{
			{Index: FeatLOC, Name: "loc", Group: GroupVolume, Description: "Line count"},
			{Index: FeatChars, Name: "chars", Group: GroupVolume, Description: "Rune count"},
			{Index: FeatWords, Name: "words", Group: GroupVolume, Description: "Whitespace-separated word count"},
			{Index: FeatFunctions, Name: "functions", Group: GroupShape, Description: "Function declaration markers"},
			{Index: FeatClasses, Name: "classes", Group: GroupShape, Description: "Class or type declaration markers"},
			{Index: FeatImports, Name: "imports", Group: GroupShape, Description: "Import statement markers"},
			{Index: FeatCommentRatio, Name: "comment_ratio", Group: GroupShape, Description: "Comment lines over total lines"},
			{Index: FeatEmptyRatio, Name: "empty_ratio", Group: GroupShape, Description: "Empty lines over total lines"},
			{Index: FeatAvgFnLen, Name: "avg_fn_len", Group: GroupShape, Description: "Lines per declared function"},
			{Index: FeatTokEval, Name: "tok_eval", Group: GroupSecurity, Description: "Dynamic evaluation calls"},
			{Index: FeatTokExec, Name: "tok_exec", Group: GroupSecurity, Description: "Dynamic execution calls"},
			{Index: FeatTokOSSystem, Name: "tok_os_system", Group: GroupSecurity, Description: "Shell command calls"},
			{Index: FeatTokSubprocess, Name: "tok_subprocess", Group: GroupSecurity, Description: "Subprocess spawn operations"},
			{Index: FeatTokPickle, Name: "tok_pickle", Group: GroupSecurity, Description: "Binary deserialization calls"},
			{Index: FeatTokYAMLLoad, Name: "tok_yaml_load", Group: GroupSecurity, Description: "Unsafe YAML load calls"},
			{Index: FeatTokJSONLoads, Name: "tok_json_loads", Group: GroupSecurity, Description: "JSON parse calls"},
			{Index: FeatTokSecret, Name: "tok_secret", Group: GroupSecurity, Description: "Hardcoded credential literals"},
			{Index: FeatMaxNesting, Name: "max_nesting", Group: GroupStructural, Description: "Deepest block nesting (provider)"},
			{Index: FeatBranches, Name: "branches", Group: GroupStructural, Description: "Branch statement count (provider)"},
			{Index: FeatCalls, Name: "calls", Group: GroupStructural, Description: "Call expression count (provider)"},
		},
	}
}
