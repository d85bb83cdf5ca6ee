// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders a standalone HTML transcript with embedded CSS.
// Fenced code blocks inside assistant answers are syntax-highlighted.
type HTMLExporter struct{}

func (e *HTMLExporter) Export(conv model.Conversation, messages []model.Message) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"ask-herbie\">\n")
	sb.WriteString(getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(messages)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Exported:</strong> %s</span>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range messages {
		sb.WriteString(renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString("            <p>Exported from <strong>Ask Herbie</strong></p>\n")
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

func (e *HTMLExporter) FileExtension() string { return ".html" }

// =============================================================================
// RENDERING
// =============================================================================

func renderMessage(msg model.Message) string {
	var sb strings.Builder

	roleClass := "assistant"
	if msg.SenderID == model.SenderUser {
		roleClass = "user"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", senderLabel(msg.SenderID)))
	sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n",
		msg.CreatedAt.Format("2006-01-02 15:04")))
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(stripCitations(msg.Content)))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// fencedBlock matches a triple-backtick code fence with optional language tag.
var fencedBlock = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")

// formatContent escapes message content to HTML, highlighting fenced code
// blocks and turning blank-line-separated text into paragraphs.
func formatContent(content string) string {
	// Pull code fences out before escaping so chroma sees raw source.
	type block struct {
		lang string
		code string
	}
	var blocks []block
	content = fencedBlock.ReplaceAllStringFunc(content, func(match string) string {
		parts := fencedBlock.FindStringSubmatch(match)
		blocks = append(blocks, block{lang: parts[1], code: parts[2]})
		return fmt.Sprintf("\x00CODE%d\x00", len(blocks)-1)
	})

	content = html.EscapeString(content)

	inlineCode := regexp.MustCompile("`([^`]+)`")
	content = inlineCode.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	var paras []string
	for _, chunk := range strings.Split(content, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if strings.HasPrefix(chunk, "\x00CODE") {
			paras = append(paras, chunk)
			continue
		}
		paras = append(paras, "<p>"+strings.ReplaceAll(chunk, "\n", "<br>")+"</p>")
	}
	content = strings.Join(paras, "\n")

	for i, b := range blocks {
		placeholder := fmt.Sprintf("\x00CODE%d\x00", i)
		content = strings.Replace(content, placeholder, highlightBlock(b.lang, b.code), 1)
	}
	return content
}

// highlightBlock renders one fenced code block through chroma's HTML
// formatter with inline styles so the export stays standalone.
func highlightBlock(lang, code string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(false))
	iterator, err := lexer.Tokenise(nil, strings.TrimRight(code, "\n"))
	if err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}

	var sb strings.Builder
	sb.WriteString("<div class=\"code-block\">")
	if lang != "" {
		sb.WriteString(fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang)))
	}
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	sb.WriteString("</div>")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

func getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
            --bg-primary: #f7f8f5;
            --bg-secondary: #ffffff;
            --bg-tertiary: #e8ede4;
            --text-primary: #2b3a2b;
            --text-secondary: #566356;
            --text-muted: #7d8a7d;
            --border-color: #dfe6db;
            --user-bg: #eef3ea;
            --assistant-bg: #ffffff;
            --accent-green: #4a7c59;
            --accent-blue: #3a6ea5;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 860px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.08);
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 26px;
            font-weight: 700;
            margin-bottom: 12px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .conversation {
            padding: 24px 32px;
        }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }

        .user-message {
            background: var(--user-bg);
            border-left-color: var(--accent-blue);
        }

        .assistant-message {
            background: var(--assistant-bg);
            border: 1px solid var(--border-color);
            border-left: 4px solid var(--accent-green);
        }

        .message-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role-label {
            font-weight: 600;
        }

        .timestamp {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .message-content p {
            margin-bottom: 12px;
        }

        .message-content p:last-child {
            margin-bottom: 0;
        }

        .code-block {
            margin: 16px 0;
            border-radius: 8px;
            overflow: hidden;
            border: 1px solid var(--border-color);
        }

        .code-lang {
            padding: 8px 16px;
            background: var(--bg-tertiary);
            font-size: 12px;
            font-weight: 600;
            color: var(--text-secondary);
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }

        .code-block pre {
            margin: 0;
            padding: 16px;
            overflow-x: auto;
            font-family: var(--font-mono);
            font-size: 14px;
            line-height: 1.5;
        }

        .inline-code {
            font-family: var(--font-mono);
            font-size: 14px;
            padding: 2px 6px;
            background: var(--bg-tertiary);
            border-radius: 4px;
        }

        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        @media print {
            body { padding: 0; }
            .container { box-shadow: none; border-radius: 0; }
            .message { page-break-inside: avoid; }
        }
    </style>
`
}
