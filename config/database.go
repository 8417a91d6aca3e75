package config

import (
    "context"
    "log"
    "os"
    "time"

    "go.mongodb.org/mongo-driver/mongo"
    "go.mongodb.org/mongo-driver/mongo/options"
)

var(
    Client *mongo.Client
    UserCollection *mongo.Collection
    IngredientCollection *mongo.Collection
    UlamCollection *mongo.Collection
    SaleCollection *mongo.Collection
)

func ConnectDatabase() {
    client, err := mongo.NewClient(options.Client().ApplyURI(os.Getenv("MONGO_URI")))
    if err != nil {
        log.Fatal(err)
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    err = client.Connect(ctx)
    if err != nil {
        log.Fatal(err)
    }

    err = client.Ping(ctx, nil)
    if err != nil {
        log.Fatal(err)
    }

    Client = client
    UserCollection = Client.Database("karinderya").Collection("users")
    IngredientCollection = Client.Database("karinderya").Collection("ingredients")
    UlamCollection = Client.Database("karinderya").Collection("ulams")
    SaleCollection = Client.Database("karinderya").Collection("sales")

    log.Println("Connected to MongoDB")
}
