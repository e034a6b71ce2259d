package runlog

// Sources is everything a run log recorded for one floor.
type Sources struct {
	CardChoices []CardChoice
	Purchases   []string
	Purges      []string
	Campfire    *CampfireChoice // at most one per floor
	Event       *EventChoice    // at most one per floor
}

// Index groups a run's events by floor. It is built once per run.
type Index struct {
	cardChoices map[int][]CardChoice
	purchases   map[int][]string
	purges      map[int][]string
	campfires   map[int]CampfireChoice
	events      map[int]EventChoice
}

// NewIndex groups the records of run by floor. Multi-valued sources keep log
// order; for campfires and events a later record on the same floor replaces
// an earlier one.
func NewIndex(run *RunLog) *Index {
	x := &Index{
		cardChoices: make(map[int][]CardChoice),
		purchases:   make(map[int][]string),
		purges:      make(map[int][]string),
		campfires:   make(map[int]CampfireChoice),
		events:      make(map[int]EventChoice),
	}
	for _, cc := range run.CardChoices {
		x.cardChoices[cc.Floor] = append(x.cardChoices[cc.Floor], cc)
	}
	for _, p := range run.Purchases {
		x.purchases[p.Floor] = append(x.purchases[p.Floor], p.Item)
	}
	for _, p := range run.Purges {
		x.purges[p.Floor] = append(x.purges[p.Floor], p.Item)
	}
	for _, cf := range run.CampfireChoices {
		x.campfires[cf.Floor] = cf
	}
	for _, ec := range run.EventChoices {
		x.events[ec.Floor] = ec
	}
	return x
}

// Floor returns the records for floor. Absent sources are empty.
func (x *Index) Floor(floor int) Sources {
	src := Sources{
		CardChoices: x.cardChoices[floor],
		Purchases:   x.purchases[floor],
		Purges:      x.purges[floor],
	}
	if cf, ok := x.campfires[floor]; ok {
		src.Campfire = &cf
	}
	if ec, ok := x.events[floor]; ok {
		src.Event = &ec
	}
	return src
}
