package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// Конструкторы стадий агрегации. Каждая функция возвращает одну стадию,
// пайплайн собирается из них как из значений и может переиспользоваться.

// Match — стадия $match.
func Match(filter bson.D) bson.D {
	return bson.D{{Key: "$match", Value: filter}}
}

// Lookup — простой $lookup по паре полей.
func Lookup(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}}}
}

// LookupPipeline — $lookup с let и вложенным пайплайном.
func LookupPipeline(from string, let bson.D, pipeline mongodriver.Pipeline, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "let", Value: let},
		{Key: "pipeline", Value: pipeline},
		{Key: "as", Value: as},
	}}}
}

// Unwind — $unwind. indexField, если не пуст, сохраняет позицию элемента в массиве.
func Unwind(path, indexField string) bson.D {
	spec := bson.D{{Key: "path", Value: path}}
	if indexField != "" {
		spec = append(spec, bson.E{Key: "includeArrayIndex", Value: indexField})
	}

	return bson.D{{Key: "$unwind", Value: spec}}
}

// AddFields — стадия $addFields.
func AddFields(fields bson.D) bson.D {
	return bson.D{{Key: "$addFields", Value: fields}}
}

// Project — стадия $project.
func Project(fields bson.D) bson.D {
	return bson.D{{Key: "$project", Value: fields}}
}

// Sort — стадия $sort.
func Sort(keys bson.D) bson.D {
	return bson.D{{Key: "$sort", Value: keys}}
}

// ReplaceRoot — стадия $replaceRoot.
func ReplaceRoot(newRoot string) bson.D {
	return bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: newRoot}}}}
}

// ownerLookup присоединяет к видео его владельца, оставляя только публичные поля.
// Результат кладётся в поле owner как одиночный документ (а не массив).
func ownerLookup() mongodriver.Pipeline {
	inner := mongodriver.Pipeline{
		Match(bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$oid"}}}}}),
		Project(bson.D{
			{Key: "_id", Value: 0},
			{Key: "fullname", Value: 1},
			{Key: "username", Value: 1},
			{Key: "avatar", Value: 1},
		}),
	}

	return mongodriver.Pipeline{
		LookupPipeline(accountsCollection, bson.D{{Key: "oid", Value: "$owner"}}, inner, "owner"),
		AddFields(bson.D{{Key: "owner", Value: bson.D{{Key: "$first", Value: "$owner"}}}}),
	}
}

// videoWithOwnerLookup — $lookup видео по переменной vid с вложенным присоединением владельца.
func videoWithOwnerLookup(localField, as string) bson.D {
	inner := mongodriver.Pipeline{
		Match(bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$vid"}}}}}),
	}
	inner = append(inner, ownerLookup()...)

	return LookupPipeline(videosCollection, bson.D{{Key: "vid", Value: localField}}, inner, as)
}

// subscriptionCounts — стадии, считающие подписчиков/подписки и флаг подписки зрителя.
// Всё вычисляется в одном проходе агрегации, то есть из одного снимка.
func subscriptionCounts(viewer any) mongodriver.Pipeline {
	return mongodriver.Pipeline{
		Lookup(subscriptionsCollection, "_id", "channel", "subscribers"),
		Lookup(subscriptionsCollection, "_id", "subscriber", "subscribedTo"),
		AddFields(bson.D{
			{Key: "subscribers_count", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channels_subscribed_to_count", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "is_subscribed", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
				{Key: "then", Value: true},
				{Key: "else", Value: false},
			}}}},
		}),
	}
}
