// Command visionchat inspects and serves the persisted state of the vision
// chat client: chat history, settings and window geometry.
package main

func main() {
	Execute()
}
