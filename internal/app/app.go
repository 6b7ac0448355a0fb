package app

// Init initialiaze all the app components. InitConfiguration and InitLogger
// must have been called beforehand.
func Init() {
	initPostgres()
	initRepositories()
	initServices()
}

// Stop cleanup everything before stopping the app
func Stop() {
	stopServices()
}
