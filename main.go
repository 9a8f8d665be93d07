package main

import "regreen-notification-service/app"

func main() {
	app.Run()
}
