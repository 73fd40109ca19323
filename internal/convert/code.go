package convert

import (
	"fmt"
	"html"
	"regexp"
)

// jsRunnerTemplate shows the escaped source and executes the original
// code in-browser, with console methods patched to also render their
// output into the page. Execution errors are caught and displayed.
const jsRunnerTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>JavaScript Runner</title>
<style>
body { font-family: monospace; margin: 2rem; }
pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow-x: auto; }
#output { border-top: 1px solid #ddd; margin-top: 1rem; padding-top: 1rem; white-space: pre-wrap; }
.log-error { color: #c00; }
.log-warn { color: #b60; }
</style>
</head>
<body>
<h3>Source</h3>
<pre>%s</pre>
<h3>Output</h3>
<div id="output"></div>
<script>
(function () {
  var output = document.getElementById('output');
  function append(cls, args) {
    var line = document.createElement('div');
    if (cls) line.className = cls;
    line.textContent = Array.prototype.map.call(args, function (a) {
      return typeof a === 'object' ? JSON.stringify(a) : String(a);
    }).join(' ');
    output.appendChild(line);
  }
  ['log', 'info', 'warn', 'error'].forEach(function (level) {
    var original = console[level];
    console[level] = function () {
      append(level === 'log' || level === 'info' ? '' : 'log-' + level, arguments);
      original.apply(console, arguments);
    };
  });
  try {
%s
  } catch (err) {
    append('log-error', ['Error: ' + err.message]);
  }
})();
</script>
</body>
</html>`

// tsStripPatterns are applied in order. This is a purely textual
// approximation of type stripping: nested generics, multiline type
// aliases and brace-heavy interfaces are known to come out wrong.
var tsStripPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	// Type-only imports and re-exports.
	{regexp.MustCompile(`(?m)^\s*import\s+type\s[^\n]*\n?`), ""},
	{regexp.MustCompile(`(?m)^\s*export\s+type\s*\{[^\n]*\n?`), ""},
	// Interface and enum blocks.
	{regexp.MustCompile(`(?ms)^\s*(?:export\s+)?interface\s+\w[^{]*\{.*?^\}\n?`), ""},
	{regexp.MustCompile(`(?ms)^\s*(?:export\s+)?(?:const\s+)?enum\s+\w+\s*\{.*?\}\n?`), ""},
	// Single-line type aliases.
	{regexp.MustCompile(`(?m)^\s*(?:export\s+)?type\s+\w+(?:<[^=\n]*>)?\s*=[^\n]*\n?`), ""},
	// Generic parameter lists on declarations.
	{regexp.MustCompile(`(function\s+[\w$]+|class\s+[\w$]+)\s*<[^<>]*>`), "${1}"},
	// implements clauses.
	{regexp.MustCompile(`(class\s+[\w$]+(?:\s+extends\s+[\w$.]+)?)\s+implements\s+[\w$.,<>\s]+\{`), "${1} {"},
	// Return type annotations.
	{regexp.MustCompile(`\)\s*:\s*[\w$.]+(?:<[^<>]*>)?(?:\[\])?(\s*(?:\{|=>))`), ")${1}"},
	// Optional markers ahead of annotations.
	{regexp.MustCompile(`\?\s*:`), ":"},
	// Variable, parameter and property annotations.
	{regexp.MustCompile(`:\s*[A-Za-z_$][\w$.]*(?:<[^<>]*>)?(?:\[\])?(?:\s*\|\s*[\w$.]+(?:\[\])?)*(\s*[=,;)\n])`), "${1}"},
	// Assertions and modifiers.
	{regexp.MustCompile(`\s+as\s+(?:const\b|[A-Za-z_$][\w$.]*(?:<[^<>]*>)?(?:\[\])?)`), ""},
	{regexp.MustCompile(`(?m)^(\s*)(?:public|private|protected|readonly)\s+`), "${1}"},
	{regexp.MustCompile(`!\.`), "."},
	{regexp.MustCompile(`!;`), ";"},
}

// CodeConverter handles the source-code pairs: js to runnable html and
// ts to js.
type CodeConverter struct{}

func NewCodeConverter() *CodeConverter {
	return &CodeConverter{}
}

// JSToHTML embeds the source into the runner template: escaped for
// display, verbatim for execution.
func (c *CodeConverter) JSToHTML(data []byte) (*Result, error) {
	src := string(data)
	page := fmt.Sprintf(jsRunnerTemplate, html.EscapeString(src), src)
	return &Result{Bytes: []byte(page), MIMEType: "text/html"}, nil
}

// TSToJS strips TypeScript type syntax with regular expressions. Not a
// compiler: no parsing, no type checking, and the documented failure
// modes on complex syntax remain.
func (c *CodeConverter) TSToJS(data []byte) (*Result, error) {
	out := string(data)
	for _, p := range tsStripPatterns {
		out = p.re.ReplaceAllString(out, p.replacement)
	}
	return &Result{Bytes: []byte(out), MIMEType: "text/javascript"}, nil
}
