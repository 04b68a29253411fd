// Package shell interprets terminal command lines against the virtual
// filesystem.
//
// Each call to Exec is stateless: the caller owns the working directory and
// passes it in with every line, receiving the (possibly changed) directory
// back in the Result. Output lines are plain text.
//
// Commands:
//   - help, whoami, date, pwd, echo, clear
//   - ls [path], cd [path], cat <file>, mkdir <path>
package shell
