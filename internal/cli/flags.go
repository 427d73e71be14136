package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ServeCommand runs the HTTP API.
type ServeCommand struct {
	Host     string `long:"host" description:"Override listen host"`
	Port     int    `long:"port" description:"Override listen port"`
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}

// ListCommand prints all trips.
type ListCommand struct {
	globals *GlobalFlags
	version string
}

// ShowCommand prints one trip.
type ShowCommand struct {
	ID int64 `long:"id" description:"Trip ID (required)"`

	globals *GlobalFlags
	version string
}

// AddCommand saves a trip from the command line.
type AddCommand struct {
	Place    string  `long:"place" description:"Place name (required)"`
	Lat      float64 `long:"lat" description:"Latitude (required)"`
	Lon      float64 `long:"lon" description:"Longitude (required)"`
	Start    string  `long:"start" description:"Start date, YYYY-MM-DD (required)"`
	End      string  `long:"end" description:"End date, YYYY-MM-DD"`
	Category string  `long:"category" description:"Category key (city, food, stay, trail, beach, landmark, nature, poi)"`
	Emoji    string  `long:"emoji" description:"Category emoji; defaults to the category's own"`
	PlaceID  string  `long:"place-id" description:"Geocoder place id"`

	globals *GlobalFlags
	version string
}

// DeleteCommand removes a trip.
type DeleteCommand struct {
	ID int64 `long:"id" description:"Trip ID (required)"`

	globals *GlobalFlags
	version string
}

// ExportCommand writes the export document.
type ExportCommand struct {
	Out string `long:"out" description:"Output file (default stdout)"`

	globals *GlobalFlags
	version string
}

// SearchCommand runs one place search through the geocoder.
type SearchCommand struct {
	globals *GlobalFlags
	version string
}

// StatusCommand shows database and trip statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
