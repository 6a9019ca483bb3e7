// Command auditdeck is the operator console for multi-agent security audits.
package main

import "github.com/auditdeck/auditdeck/cmd/auditdeck/cmd"

func main() {
	cmd.Execute()
}
