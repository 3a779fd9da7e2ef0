package orbital

import (
	"encoding/json"
	"fmt"
	"io"
)

// TrajectoryPoint is one sample of an exported trajectory.
type TrajectoryPoint struct {
	T        float64   `json:"t"`        // seconds from the start of the arc
	Position []float64 `json:"position"` // km
	Velocity []float64 `json:"velocity"` // km/s
}

// TrajectoryCatalog is the JSON export of one propagated arc.
type TrajectoryCatalog struct {
	Body   string            `json:"body"`
	Frame  string            `json:"frame"`
	States []TrajectoryPoint `json:"states"`
}

func (c TrajectoryCatalog) String() string {
	return fmt.Sprintf("%s (%s, %d states)", c.Body, c.Frame, len(c.States))
}

func frameName(body CelestialObject) string {
	if body.Equals(Sun) {
		return "EclipticJ2000"
	}
	return "ICRF"
}

// WriteTrajectoryCSV writes the raw Cartesian states of an arc.
func WriteTrajectoryCSV(w io.Writer, states []TimedState) error {
	_, err := fmt.Fprint(w, `# Records are <t> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time in seconds from the start of the arc
#   Position in km
#   Velocity in km/sec
`)
	if err != nil {
		return err
	}
	for _, st := range states {
		R, V := st.SV.R, st.SV.V
		if _, err = fmt.Fprintf(w, "%f %f %f %f %f %f %f\n", st.T,
			float64(R.X), float64(R.Y), float64(R.Z),
			float64(V.X), float64(V.Y), float64(V.Z)); err != nil {
			return err
		}
	}
	return nil
}

// WriteElementsCSV writes the osculating elements of an arc about the given
// body.
func WriteElementsCSV(w io.Writer, states []TimedState, body CelestialObject) error {
	_, err := fmt.Fprint(w, `# Records are t, a, e, i, Ω, ω, ν. All angles are in degrees.
t,a,e,i,Omega,omega,nu
`)
	if err != nil {
		return err
	}
	for _, st := range states {
		o := st.SV.ToOrbit(body)
		if _, err = fmt.Fprintf(w, "%.3f,%.3f,%.6f,%.3f,%.3f,%.3f,%.3f\n", st.T,
			float64(o.a), float64(o.e), o.i.Deg(), o.Ω.Deg(), o.ω.Deg(), o.ν.Deg()); err != nil {
			return err
		}
	}
	return nil
}

// WriteTrajectoryJSON writes the arc as a single JSON document.
func WriteTrajectoryJSON(w io.Writer, states []TimedState, body CelestialObject) error {
	cat := TrajectoryCatalog{Body: body.Name, Frame: frameName(body), States: make([]TrajectoryPoint, len(states))}
	for i, st := range states {
		cat.States[i] = TrajectoryPoint{st.T, st.SV.R.Slice(), st.SV.V.Slice()}
	}
	marsh, err := json.Marshal(cat)
	if err != nil {
		return err
	}
	_, err = w.Write(marsh)
	return err
}

// ExportConfig configures the exporting of a propagation.
type ExportConfig struct {
	Filename  string
	AsCSV     bool // raw Cartesian states
	AsJSON    bool
	Elements  bool // osculating elements instead of raw states
	Timestamp bool // stamp the creation time into the file name
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsJSON
}
