package event

import "github.com/samber/mo"

// Patch is a partial edit. Only present fields are applied.
type Patch struct {
	Title            mo.Option[string]     `json:"title"`
	Date             mo.Option[string]     `json:"date"`
	StartTime        mo.Option[string]     `json:"startTime"`
	EndTime          mo.Option[string]     `json:"endTime"`
	Description      mo.Option[string]     `json:"description"`
	Location         mo.Option[string]     `json:"location"`
	Category         mo.Option[string]     `json:"category"`
	NotificationTime mo.Option[int]        `json:"notificationTime"`
	Repeat           mo.Option[RepeatInfo] `json:"repeat"`
}

// IsEmpty reports whether the patch carries no field at all.
func (p Patch) IsEmpty() bool {
	return p.Title.IsAbsent() &&
		p.Date.IsAbsent() &&
		p.StartTime.IsAbsent() &&
		p.EndTime.IsAbsent() &&
		p.Description.IsAbsent() &&
		p.Location.IsAbsent() &&
		p.Category.IsAbsent() &&
		p.NotificationTime.IsAbsent() &&
		p.Repeat.IsAbsent()
}

// Apply returns e with every present field of p written over it.
func (p Patch) Apply(e Event) Event {
	e.Title = p.Title.OrElse(e.Title)
	e.Date = p.Date.OrElse(e.Date)
	e.StartTime = p.StartTime.OrElse(e.StartTime)
	e.EndTime = p.EndTime.OrElse(e.EndTime)
	e.Description = p.Description.OrElse(e.Description)
	e.Location = p.Location.OrElse(e.Location)
	e.Category = p.Category.OrElse(e.Category)
	e.NotificationTime = p.NotificationTime.OrElse(e.NotificationTime)
	e.Repeat = p.Repeat.OrElse(e.Repeat)
	return e
}

// EndDate returns the end date carried by the patch's rule, if any.
func (p Patch) EndDate() mo.Option[string] {
	r, ok := p.Repeat.Get()
	if !ok {
		return mo.None[string]()
	}
	return r.EndDate
}

// WithoutDate returns a copy of p that leaves the date untouched.
func (p Patch) WithoutDate() Patch {
	p.Date = mo.None[string]()
	return p
}

// PatchFrom builds a patch that overwrites every editable field with e's values.
func PatchFrom(e Event) Patch {
	return Patch{
		Title:            mo.Some(e.Title),
		Date:             mo.Some(e.Date),
		StartTime:        mo.Some(e.StartTime),
		EndTime:          mo.Some(e.EndTime),
		Description:      mo.Some(e.Description),
		Location:         mo.Some(e.Location),
		Category:         mo.Some(e.Category),
		NotificationTime: mo.Some(e.NotificationTime),
		Repeat:           mo.Some(e.Repeat),
	}
}
