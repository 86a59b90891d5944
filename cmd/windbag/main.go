// Command windbag is an AX.25 packet radio chat client with optional
// Ed25519 message signing.
package main

import (
	"fmt"
	"os"
)

const usage = `Usage: windbag <command> [args]

Commands:
  chat                        start an interactive chat session
  keygen                      generate a new signing keypair
  import-key <call> <key>     add a correspondent's public key to the keyring
  export-key [call]           print your public key, or a correspondent's
  delete-key <call>           remove a correspondent's key from the keyring
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "chat":
		err = runChat(args)
	case "keygen":
		err = runKeygen(args)
	case "import-key":
		err = runImportKey(args)
	case "export-key":
		err = runExportKey(args)
	case "delete-key":
		err = runDeleteKey(args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "windbag: unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
