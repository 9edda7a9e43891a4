// register.go wires the reference designs into the sim model registry. The
// init() runs when any package imports sim/design; the command line imports it
// for this side effect.
package design

import "github.com/vsim-dev/vsim/sim"

func init() {
	sim.RegisterModel(ExampleTopName, func(opts sim.ModelOptions) (sim.Model, error) {
		d, err := NewExampleTop(opts)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}
