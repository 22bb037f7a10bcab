package cache

// Tag marks a cache entry for group invalidation. The vocabulary mirrors the
// backend's resource model: per-workout tags plus the LIST/DATE/RANGE group
// tags that cover list-shaped queries.
type Tag string

const (
	TagWorkoutList  Tag = "Workouts:LIST"
	TagWorkoutDate  Tag = "Workouts:DATE"
	TagWorkoutRange Tag = "Workouts:RANGE"

	// tagWorkoutByID is a placeholder expanded to Workouts:<id> when a
	// mutation's tag set is resolved for a concrete workout.
	tagWorkoutByID Tag = "Workouts:<id>"
)

// WorkoutTag tags a single workout entity
func WorkoutTag(id string) Tag {
	return Tag("Workouts:" + id)
}

// WeatherTag tags the current-weather entry for a location
func WeatherTag(location string) Tag {
	return Tag("Weather:" + location)
}

// WeatherForecastTag tags the forecast entry for a location
func WeatherForecastTag(location string) Tag {
	return Tag("Weather:forecast-" + location)
}

// Mutation names a workout write operation
type Mutation string

const (
	MutationAdd      Mutation = "add"
	MutationUpdate   Mutation = "update"
	MutationDelete   Mutation = "delete"
	MutationComplete Mutation = "complete"
)

// mutationTags is the single auditable source of the mutation invalidation
// policy. DATE and RANGE are invalidated globally rather than per parameter:
// conservative over-invalidation that keeps every date-scoped list correct.
var mutationTags = map[Mutation][]Tag{
	MutationAdd:      {TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
	MutationUpdate:   {tagWorkoutByID, TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
	MutationDelete:   {tagWorkoutByID, TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
	MutationComplete: {tagWorkoutByID, TagWorkoutList, TagWorkoutDate, TagWorkoutRange},
}

// MutationTags resolves the tag set invalidated by op against workout id
func MutationTags(op Mutation, id string) []Tag {
	template := mutationTags[op]
	tags := make([]Tag, 0, len(template))
	for _, t := range template {
		if t == tagWorkoutByID {
			tags = append(tags, WorkoutTag(id))
			continue
		}
		tags = append(tags, t)
	}
	return tags
}
