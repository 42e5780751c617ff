package main

import "github.com/frahmantamala/hr-attendance/cmd"

func main() {
	cmd.Execute()
}
