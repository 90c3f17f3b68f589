package mcpserver

// NoteFormatContract describes how notes are laid out on disk and how tool
// arguments map onto that layout.
const NoteFormatContract = `# Folder Notes Format

A workspace is a single directory. Its top-level sub-directories are
**folders**; the Markdown files directly inside a folder are **notes**.
There is no deeper nesting.

` + "```" + `text
<workspace>/
  Work/
    Plan.md
    Meeting notes.md
  Personal/
    Ideas.md
` + "```" + `

## Names

1. Tools take display names: the folder's directory name and the note's
   file name **without** the ` + "`" + `.md` + "`" + ` extension.
2. Leading and trailing whitespace is trimmed from every name.
3. Names are unique within their parent **ignoring case**: ` + "`" + `Plan` + "`" + ` and ` + "`" + `plan` + "`" + `
   cannot both exist in one folder. A rename that only changes case is refused.
4. Names must not be empty, ` + "`" + `.` + "`" + ` or ` + "`" + `..` + "`" + `, and must not contain ` + "`" + `/` + "`" + ` or ` + "`" + `\` + "`" + `.
5. Entries whose name starts with ` + "`" + `.` + "`" + ` are hidden and never listed.

## Content

- Notes are UTF-8 Markdown. Content is stored exactly as given.
- ` + "`" + `create_note` + "`" + ` seeds a note with a level-1 heading of its name:
  ` + "`" + `# <name>` + "`" + ` followed by a blank line.
- ` + "`" + `save_note` + "`" + ` replaces the whole content. Pass the ` + "`" + `checksum` + "`" + ` returned by
  ` + "`" + `read_note` + "`" + ` as ` + "`" + `if_match` + "`" + ` to refuse the write when the note changed meanwhile.
- Search titles come from a YAML frontmatter ` + "`" + `title:` + "`" + ` field, else the first
  level-1 heading, else the note name.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
---

# Weekly standup

Attendees: Alice, Bob.

## Action items

- Alice to review the design doc
` + "```" + `
`
