package respond

import "regexp"

type redaction struct {
	pattern *regexp.Regexp
	replace string
}

// redactions run in order; the Anthropic key form is a prefix of the OpenAI one.
var redactions = []redaction{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`(?i)\b(bearer)\s+[a-zA-Z0-9._~+/=-]+`), "$1 ****"},
	{regexp.MustCompile(`://([^:/@]+):([^@]+)@`), "://$1:****@"},
	{regexp.MustCompile(`(?i)\b(api_?key|token|access_key)=([^&\s"]+)`), "$1=****"},
}

// SanitizeError renders err with API keys, bearer tokens, DSN passwords and
// credential query parameters masked. A nil error renders as "".
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.pattern.ReplaceAllString(msg, r.replace)
	}
	return msg
}
