package main

// @title Restaurant Concierge API
// @version 1.0
// @description Conversational table booking over websocket.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:9089
// @BasePath /
// @schemes http
import (
	_ "restaurant-concierge/docs"
	protocol "restaurant-concierge/protocal"

	"github.com/sirupsen/logrus"
)

func main() {
	err := protocol.ServeHTTP()
	if err != nil {
		logrus.Fatalln(err)
	}
}
