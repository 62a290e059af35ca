package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconPending = "○"
	IconDone    = "●"
	IconBell    = "\U000F009A" // 󰂚
	IconClock   = "\uf017"     // nf-fa-clock_o
)
