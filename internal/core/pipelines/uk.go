package pipelines

import "github.com/JonMunkholm/tabproj/internal/core"

// UKMacroURL is the public UK macroeconomic dataset the uk_macro pipeline
// was built for.
const UKMacroURL = "https://raw.githubusercontent.com/cluster-apps-on-docker/spark-standalone-cluster-on-docker/master/build/workspace/data/uk-macroeconomic-data.csv"

func init() {
	registerUKMacro()
}

// registerUKMacro keeps the population and unemployment series, newest year
// first. The Description column holds the year.
func registerUKMacro() {
	core.Register(core.Definition{
		Key:       "uk_macro",
		Label:     "UK population and unemployment by year",
		Separator: ",",
		SourceURL: UKMacroURL,
		Select:    []string{"Description", "Population (GB+NI)", "Unemployment rate"},
		Rename: map[string]string{
			"Description":        "year",
			"Population (GB+NI)": "population",
			"Unemployment rate":  "unemployment_rate",
		},
		SortBy: "year",
		Head:   5,
	})
}
