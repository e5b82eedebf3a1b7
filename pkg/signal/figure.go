package signal

import (
	"github.com/ctrlviz/ctrlviz/pkg/config"
	"github.com/ctrlviz/ctrlviz/pkg/figure"
)

// BuildFigure lays out one panel per signal. With limits, each panel also
// carries the +limit and -limit reference lines under the signal.
func BuildFigure(name string, cfg config.SeriesConfig, data *Data) *figure.Figure {
	fig := &figure.Figure{
		Name:        name,
		Title:       cfg.Title,
		TickSpacing: TickSpacing(data.Samples()),
		Panels:      make([]figure.Panel, 0, len(data.Signals)),
	}

	for c, seq := range data.Signals {
		sig := cfg.Layout.Signals[c]
		panel := figure.Panel{
			Units: cfg.Layout.Units,
			Grid:  true,
			Series: []figure.Series{{
				Label:  sig.Label,
				Color:  sig.Color,
				Width:  sig.Width,
				Values: seq,
				ZOrder: 2,
			}},
		}

		if cfg.Limits != nil && data.Limits != nil {
			panel.Series = append(panel.Series,
				figure.Series{
					Label:  cfg.Limits.MaxLabel,
					Color:  cfg.Limits.MaxColor,
					Width:  cfg.Limits.Width,
					Values: data.LimitSequence(c, 1),
					ZOrder: 1,
				},
				figure.Series{
					Label:  cfg.Limits.MinLabel,
					Color:  cfg.Limits.MinColor,
					Width:  cfg.Limits.Width,
					Values: data.LimitSequence(c, -1),
					ZOrder: 1,
				},
			)
		}

		fig.Panels = append(fig.Panels, panel)
	}

	return fig
}
