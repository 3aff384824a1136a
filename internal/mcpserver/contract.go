package mcpserver

// DocFormatContract describes the canonical vault document format that
// LLM consumers should follow when writing documents.
const DocFormatContract = `# Raido Document Format Contract

Every document stored in a Raido vault MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: REQ_Login                       # REQUIRED - the declared identifier
title: Login requirement            # REQUIRED - human-readable title
description: What this covers       # REQUIRED - one or two sentences
uplink: JRN_Onboarding              # OPTIONAL - parent identifier
downlinks:                          # OPTIONAL - child identifiers
  - COMP_AuthService
---
requirementDiagram

functionalRequirement REQ_Login {
  id: 1
  text: the user can log in
}
` + "```" + `

## Rules

1. **YAML front matter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **Identifiers** follow ` + "`" + `PREFIX_Name` + "`" + `: an uppercase prefix, one
   underscore, then the name (e.g. ` + "`" + `PER_Shopper` + "`" + `, ` + "`" + `REQ_Login` + "`" + `).
3. **The file name stem must equal the declared id** (` + "`" + `REQ_Login.mermaid` + "`" + `
   declares ` + "`" + `id: REQ_Login` + "`" + `).
4. **Each identifier is declared by exactly one file.** Referencing an id
   from diagrams or links is fine anywhere; declaring it twice is an error.
5. **Links are reciprocal.** If A lists B in ` + "`" + `downlinks` + "`" + `, B must carry
   ` + "`" + `uplink: A` + "`" + ` (or be a node inside A's diagram, which implies it).
6. **Folders govern prefixes and notations:**
   - ` + "`" + `personas/` + "`" + ` - ` + "`" + `PER_` + "`" + ` ids, mindmap diagrams with Goals and Frustrations branches
   - ` + "`" + `journeys/` + "`" + ` - ` + "`" + `JRN_` + "`" + ` ids, flowchart or sequence diagrams
   - ` + "`" + `components/` + "`" + ` - ` + "`" + `COMP_` + "`" + ` ids, C4 or flowchart diagrams
   - ` + "`" + `requirements/` + "`" + ` - ` + "`" + `REQ_` + "`" + ` ids, requirement diagrams
   - ` + "`" + `states/` + "`" + ` - ` + "`" + `STA_` + "`" + ` ids, state diagrams
   - ` + "`" + `data/` + "`" + ` - ` + "`" + `ENT_` + "`" + ` ids, ER diagrams
7. **File paths** end with ` + "`" + `.mermaid` + "`" + ` (or ` + "`" + `.md` + "`" + ` for prose documents)
   and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
id: JRN_Checkout
title: Checkout journey
description: How a shopper completes a purchase.
uplink: PER_Shopper
downlinks:
  - REQ_Pay
---
flowchart TD
  JRN_Checkout --> REQ_Pay
` + "```" + `

Run the ` + "`" + `validate_project` + "`" + ` tool after writing to confirm the vault
still passes.
`
