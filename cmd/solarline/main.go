package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"

	orbital "github.com/sksat/solar-line-sub004"
)

// This command only reads a scenario file and propagates the arc it
// describes, writing trajectory exports if the scenario asks for them.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "propagation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	duration := readDuration()
	sv, body, bodyKnown := readState()
	integ := readIntegrator()
	profile, autoDisc := readThrust()
	disc := append(autoDisc, confReadFloats("arc.discontinuities")...)

	csvPath := viper.GetString("export.csv")
	jsonPath := viper.GetString("export.json")
	elemPath := viper.GetString("export.elements")
	save := viper.GetBool("arc.save") || csvPath != "" || jsonPath != "" || elemPath != ""
	if elemPath != "" && !bodyKnown {
		log.Fatal("elements export needs a named central body (set arc.body)")
	}

	if verbose {
		log.Printf("[conf] duration: %s", duration)
		log.Printf("[conf] integrator: %s", integ)
		log.Printf("[conf] thrust: %s", profile)
		if bodyKnown {
			log.Printf("[conf] orbit: %s", sv.ToOrbit(body))
		}
	}

	cfg := orbital.PropConfig{
		Profile:         profile,
		Discontinuities: disc,
		SaveTrajectory:  save,
		Logger:          kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)),
	}
	res, err := integ.Propagate(sv, duration, cfg)
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}

	final := res.Final
	fmt.Printf("t=%f s\nR=%+v km\nV=%+v km/s\n", final.T, final.SV.R, final.SV.V)
	if bodyKnown {
		fmt.Printf("%s\n", final.SV.ToOrbit(body))
	}
	fmt.Printf("evals=%d accepted=%d rejected=%d energy drift=%.3e\n",
		res.Diag.NEval, res.Diag.NAccept, res.Diag.NReject, res.Diag.EnergyDrift)

	if csvPath != "" {
		writeFile(csvPath, func(f *os.File) error {
			return orbital.WriteTrajectoryCSV(f, res.Trajectory)
		})
	}
	if jsonPath != "" {
		writeFile(jsonPath, func(f *os.File) error {
			return orbital.WriteTrajectoryJSON(f, res.Trajectory, body)
		})
	}
	if elemPath != "" {
		writeFile(elemPath, func(f *os.File) error {
			return orbital.WriteElementsCSV(f, res.Trajectory, body)
		})
	}
}

func writeFile(path string, write func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("could not create `%s`: %s", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		log.Fatalf("could not write `%s`: %s", path, err)
	}
	log.Printf("[info] saved %s", path)
}
